package service

import (
	"context"

	"crafthub/internal/models"
	"crafthub/internal/observability"
	"crafthub/internal/repository"
	"crafthub/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// AddComment appends a comment. Content has no minimum length.
func (s *CommentService) AddComment(ctx context.Context, caller models.Caller, postID uint, content string) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService", "AddComment")
	defer func() { observability.EndSpan(span, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := ensurePost(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}

	var p validation.Problems
	validation.CommentContent(&p, content)
	if err := p.Err(); err != nil {
		return nil, err
	}

	comment = &models.Comment{
		UserID:  caller.UserID,
		PostID:  postID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.RecordInteraction("comment", observability.ResultCreated)

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns the post's comments newest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint, page Page) ([]*models.Comment, error) {
	if err := ensurePost(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}
	page = page.normalize()
	return s.commentRepo.ListByPost(ctx, postID, page.Limit, page.Offset)
}

// UpdateComment edits the caller's own comment. Someone else's comment is
// reported exactly like a missing one.
func (s *CommentService) UpdateComment(ctx context.Context, caller models.Caller, commentID uint, content string) (*models.Comment, error) {
	comment, err := s.owned(ctx, caller, commentID)
	if err != nil {
		return nil, err
	}

	var p validation.Problems
	validation.CommentContent(&p, content)
	if err := p.Err(); err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateContent(ctx, comment, content); err != nil {
		return nil, err
	}
	comment.Content = content
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, caller models.Caller, commentID uint) error {
	comment, err := s.owned(ctx, caller, commentID)
	if err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, comment); err != nil {
		return err
	}
	observability.RecordInteraction("comment", observability.ResultRemoved)
	return nil
}

func (s *CommentService) owned(ctx context.Context, caller models.Caller, commentID uint) (*models.Comment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != caller.UserID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}
