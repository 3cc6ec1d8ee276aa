package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"social_backend/internal/feature/user/domain/entity"
	"social_backend/internal/shared/apperror"
)

// GraphMetrics records the outcome of graph mutations.
type GraphMetrics interface {
	ObserveGraphOp(op, outcome string)
}

// Graph operation outcomes reported to GraphMetrics.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeCompensated = "compensated"
	OutcomeFailed      = "failed"
)

// graphUsecase maintains the follow graph.
// One logical edge A→B is stored twice: B in following(A) and A in followers(B).
// The two writes hit different records, so a failure of the second is undone by reversing the first.
type graphUsecase struct {
	users     UserRepository
	publisher EventPublisher
	metrics   GraphMetrics
}

// NewGraphUsecase creates a new graphUsecase. publisher and metrics may be nil.
func NewGraphUsecase(users UserRepository, publisher EventPublisher, metrics GraphMetrics) *graphUsecase {
	return &graphUsecase{users: users, publisher: publisher, metrics: metrics}
}

// edgeStep mutates one side of an edge.
type edgeStep func(ctx context.Context, id string, field entity.SetField, value string) (*entity.User, error)

// Follow makes followerID follow followeeID and returns the updated followee.
// Repeating the call is a no-op.
func (u *graphUsecase) Follow(ctx context.Context, followerID, followeeID string) (*entity.User, error) {
	followee, err := u.mutateEdge(ctx, "follow", followerID, followeeID, true, u.users.AddToSet, u.users.RemoveFromSet)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, EventUserFollowed, GraphEvent{FollowerID: followerID, FolloweeID: followeeID})
	return followee, nil
}

// Unfollow removes the edge followerID→followeeID and returns the updated followee.
// Removing an edge that does not exist is a no-op.
func (u *graphUsecase) Unfollow(ctx context.Context, followerID, followeeID string) (*entity.User, error) {
	followee, err := u.mutateEdge(ctx, "unfollow", followerID, followeeID, false, u.users.RemoveFromSet, u.users.AddToSet)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, EventUserUnfollowed, GraphEvent{FollowerID: followerID, FolloweeID: followeeID})
	return followee, nil
}

// mutateEdge applies the follower side and then the followee side of an edge change.
// want is the desired membership of followeeID in following(followerID).
func (u *graphUsecase) mutateEdge(ctx context.Context, op, followerID, followeeID string, want bool, apply, undo edgeStep) (*entity.User, error) {
	follower, err := u.checkEdge(ctx, followerID, followeeID)
	if err != nil {
		u.observe(op, OutcomeRejected)
		return nil, err
	}
	// Only a first step that changed state needs undoing.
	changed := follower.IsFollowing(followeeID) != want

	// follower side
	if _, err := apply(ctx, followerID, entity.FieldFollowing, followeeID); err != nil {
		u.observe(op, OutcomeFailed)
		return nil, apperror.Repository(fmt.Errorf("%s: update following of %s: %w", op, followerID, err))
	}

	// followee side
	followee, err := apply(ctx, followeeID, entity.FieldFollowers, followerID)
	if err == nil {
		u.observe(op, OutcomeOK)
		return followee, nil
	}

	if !changed {
		slog.Warn("graph mutation failed on followee side",
			"op", op, "follower_id", followerID, "followee_id", followeeID, "error", err)
		u.observe(op, OutcomeFailed)
	} else if _, undoErr := undo(ctx, followerID, entity.FieldFollowing, followeeID); undoErr != nil {
		slog.Error("graph compensation failed, edge is one-sided",
			"op", op, "follower_id", followerID, "followee_id", followeeID,
			"error", err, "compensation_error", undoErr)
		u.observe(op, OutcomeFailed)
	} else {
		slog.Warn("graph mutation rolled back",
			"op", op, "follower_id", followerID, "followee_id", followeeID, "error", err)
		u.observe(op, OutcomeCompensated)
	}
	return nil, apperror.Repository(fmt.Errorf("%s: update followers of %s: %w", op, followeeID, err))
}

// checkEdge validates the preconditions shared by follow and unfollow and returns the follower.
func (u *graphUsecase) checkEdge(ctx context.Context, followerID, followeeID string) (*entity.User, error) {
	if followerID == "" {
		return nil, apperror.Authentication(MsgUnauthenticated)
	}
	if followeeID == "" {
		return nil, apperror.Validation(MsgFollowIDMissing)
	}
	if followerID == followeeID {
		return nil, apperror.Validation(MsgSelfFollow)
	}

	follower, err := u.users.FindByID(ctx, followerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// the session outlived its account
			return nil, apperror.Authentication(MsgUnauthenticated)
		}
		return nil, apperror.Repository(err)
	}
	if _, err := u.users.FindByID(ctx, followeeID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.NotFound(MsgNoUserFound)
		}
		return nil, apperror.Repository(err)
	}
	return follower, nil
}

func (u *graphUsecase) observe(op, outcome string) {
	if u.metrics != nil {
		u.metrics.ObserveGraphOp(op, outcome)
	}
}

func (u *graphUsecase) publish(ctx context.Context, event string, payload any) {
	publishEvent(ctx, u.publisher, event, payload)
}
