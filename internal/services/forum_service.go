package services

import (
	"context"
	"errors"

	"internhub/internal/models"
	"internhub/internal/repositories"

	"go.uber.org/zap"
)

// ForumService manages community discussion threads
type ForumService interface {
	CreatePost(ctx context.Context, authorID int64, role string, req *CreateForumPostRequest) (*models.ForumPost, error)
	GetPost(ctx context.Context, id int64) (*models.ForumPost, error)
	ListPosts(ctx context.Context, filter models.ForumFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.ForumPost], error)
	UpdatePost(ctx context.Context, id, authorID int64, req *UpdateForumPostRequest) (*models.ForumPost, error)
	DeletePost(ctx context.Context, id, authorID int64) error
	LikePost(ctx context.Context, id int64) error
	Reply(ctx context.Context, postID, authorID int64, role string, req *CreateForumReplyRequest) (*models.ForumReply, error)
	DeleteReply(ctx context.Context, id, authorID int64) error
}

type forumService struct {
	forum  repositories.ForumRepository
	logger *zap.Logger
}

// NewForumService creates a new ForumService
func NewForumService(forum repositories.ForumRepository, logger *zap.Logger) ForumService {
	return &forumService{forum: forum, logger: logger}
}

func (s *forumService) CreatePost(ctx context.Context, authorID int64, role string, req *CreateForumPostRequest) (*models.ForumPost, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid post", fields)
	}

	post := &models.ForumPost{
		AuthorID:   authorID,
		AuthorRole: role,
		Title:      req.Title,
		Body:       req.Body,
		Category:   req.Category,
		Tags:       models.NormalizeList(req.Tags...),
	}

	if err := s.forum.CreatePost(ctx, post); err != nil {
		s.logger.Error("Failed to create forum post", zap.Error(err))
		return nil, NewInternalError("failed to create post")
	}
	return s.GetPost(ctx, post.ID)
}

func (s *forumService) GetPost(ctx context.Context, id int64) (*models.ForumPost, error) {
	post, err := s.forum.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("post not found")
		}
		s.logger.Error("Failed to get forum post", zap.Int64("post_id", id), zap.Error(err))
		return nil, NewInternalError("failed to load post")
	}
	return post, nil
}

func (s *forumService) ListPosts(ctx context.Context, filter models.ForumFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.ForumPost], error) {
	result, err := s.forum.ListPosts(ctx, filter, params)
	if err != nil {
		s.logger.Error("Failed to list forum posts", zap.Error(err))
		return nil, NewInternalError("failed to load posts")
	}
	return result, nil
}

func (s *forumService) UpdatePost(ctx context.Context, id, authorID int64, req *UpdateForumPostRequest) (*models.ForumPost, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid post", fields)
	}

	post := &models.ForumPost{
		ID:       id,
		AuthorID: authorID,
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		Tags:     models.NormalizeList(req.Tags...),
	}

	if err := s.forum.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("post not found")
		}
		s.logger.Error("Failed to update forum post", zap.Int64("post_id", id), zap.Error(err))
		return nil, NewInternalError("failed to update post")
	}
	return s.GetPost(ctx, id)
}

func (s *forumService) DeletePost(ctx context.Context, id, authorID int64) error {
	if err := s.forum.DeletePost(ctx, id, authorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("post not found")
		}
		s.logger.Error("Failed to delete forum post", zap.Int64("post_id", id), zap.Error(err))
		return NewInternalError("failed to delete post")
	}
	return nil
}

// LikePost bumps the like counter. Likes are anonymous and unbounded.
func (s *forumService) LikePost(ctx context.Context, id int64) error {
	if err := s.forum.LikePost(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("post not found")
		}
		s.logger.Error("Failed to like forum post", zap.Int64("post_id", id), zap.Error(err))
		return NewInternalError("failed to like post")
	}
	return nil
}

func (s *forumService) Reply(ctx context.Context, postID, authorID int64, role string, req *CreateForumReplyRequest) (*models.ForumReply, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid reply", fields)
	}

	// The post must exist before attaching a reply
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	reply := &models.ForumReply{
		PostID:     postID,
		AuthorID:   authorID,
		AuthorRole: role,
		Body:       req.Body,
	}

	if err := s.forum.CreateReply(ctx, reply); err != nil {
		s.logger.Error("Failed to create forum reply", zap.Int64("post_id", postID), zap.Error(err))
		return nil, NewInternalError("failed to create reply")
	}
	return reply, nil
}

func (s *forumService) DeleteReply(ctx context.Context, id, authorID int64) error {
	if err := s.forum.DeleteReply(ctx, id, authorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("reply not found")
		}
		s.logger.Error("Failed to delete forum reply", zap.Int64("reply_id", id), zap.Error(err))
		return NewInternalError("failed to delete reply")
	}
	return nil
}
