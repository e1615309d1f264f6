package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/repository"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrEmptyComment    = errors.New("comment body is empty")
	ErrParentMismatch  = errors.New("parent comment belongs to a different target")
)

const maxCommentLength = 4000

// CommentList is a page of top-level comments with the total count.
type CommentList struct {
	Comments []*models.Comment
	Total    int64
}

// CommentService handles threaded comments. Only registered users can
// comment; guests read anonymously.
type CommentService interface {
	Add(ctx context.Context, userID uint64, targetType models.SavableType, targetID uint64, parentID *uint64, body string) (*models.Comment, error)
	ListForTarget(ctx context.Context, targetType models.SavableType, targetID uint64, limit, offset int) (*CommentList, error)
	// Thread returns every descendant of a comment in chronological order.
	Thread(ctx context.Context, commentID uint64) ([]*models.Comment, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	episodeRepo repository.EpisodeRepository
	topicRepo   repository.TopicRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	episodeRepo repository.EpisodeRepository,
	topicRepo repository.TopicRepository,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		episodeRepo: episodeRepo,
		topicRepo:   topicRepo,
	}
}

const defaultCommentListLimit = 20

func (s *commentService) Add(ctx context.Context, userID uint64, targetType models.SavableType, targetID uint64, parentID *uint64, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	if len(body) > maxCommentLength {
		body = body[:maxCommentLength]
	}

	if err := s.checkTarget(ctx, targetType, targetID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TargetType: targetType,
		TargetID:   targetID,
		UserID:     userID,
		Body:       body,
	}
	if parentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrCommentNotFound
		}
		if parent.TargetType != targetType || parent.TargetID != targetID {
			return nil, ErrParentMismatch
		}
		comment.ParentID = sql.NullInt64{Int64: int64(*parentID), Valid: true}
	}

	return s.commentRepo.Create(ctx, comment)
}

func (s *commentService) ListForTarget(ctx context.Context, targetType models.SavableType, targetID uint64, limit, offset int) (*CommentList, error) {
	if limit <= 0 {
		limit = defaultCommentListLimit
	}
	if offset < 0 {
		offset = 0
	}

	comments, err := s.commentRepo.ListTopLevel(ctx, targetType, targetID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.commentRepo.CountTopLevel(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	return &CommentList{Comments: comments, Total: total}, nil
}

func (s *commentService) Thread(ctx context.Context, commentID uint64) ([]*models.Comment, error) {
	root, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, ErrCommentNotFound
	}
	return s.commentRepo.ListThread(ctx, commentID)
}

func (s *commentService) checkTarget(ctx context.Context, targetType models.SavableType, targetID uint64) error {
	switch targetType {
	case models.SavableEpisode:
		episode, err := s.episodeRepo.FindByID(ctx, targetID)
		if err != nil {
			return err
		}
		if episode == nil {
			return ErrEpisodeNotFound
		}
	case models.SavableTopic:
		topic, err := s.topicRepo.FindByID(ctx, targetID)
		if err != nil {
			return err
		}
		if topic == nil {
			return ErrTopicNotFound
		}
	default:
		return ErrInvalidTarget
	}
	return nil
}
