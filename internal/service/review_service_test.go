package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
	"github.com/TusharChow20/project-Chef-Lokal/internal/repository"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
)

func TestReviewService_Create(t *testing.T) {
	active := &model.User{Email: "cust@x.io", DisplayName: "Cust", PhotoURL: "p.png", UserStatus: model.UserActive}

	t.Run("created", func(t *testing.T) {
		reviews, meals, users := new(MockReviews), new(MockMeals), new(MockUsers)
		svc := service.NewReviewService(reviews, meals, users, nil, nil, nil)
		users.On("GetUser", mock.Anything, "cust@x.io").Return(active, nil)
		meals.On("GetMeal", mock.Anything, "m1").Return(biryani, nil)
		reviews.On("CreateReview", mock.Anything, mock.MatchedBy(func(r model.Review) bool {
			return r.MealName == "Biryani" && r.Rating == 5 && r.UserImage == "p.png"
		})).Return(model.InsertResult{InsertedID: "rv1"}, nil).Once()

		r, err := svc.Create(context.Background(), customer, "m1", service.ReviewInput{Rating: 5, ReviewText: "Best biryani in town"})
		require.NoError(t, err)
		assert.Equal(t, "rv1", r.ID)
	})

	t.Run("key_reused_from_order_reserves_separately", func(t *testing.T) {
		reviews, meals, users, keys := new(MockReviews), new(MockMeals), new(MockUsers), new(MockKeys)
		svc := service.NewReviewService(reviews, meals, users, keys, nil, nil)
		users.On("GetUser", mock.Anything, "cust@x.io").Return(active, nil)
		meals.On("GetMeal", mock.Anything, "m1").Return(biryani, nil)
		// "k-1" ya se usó para una orden; en reseñas es otra reserva
		keys.On("Reserve", mock.Anything, mock.MatchedBy(func(k *model.IdempotencyKey) bool {
			return k.Key == "review:cust@x.io:k-1" && k.Scope == "review"
		})).Return(nil, nil).Once()
		reviews.On("CreateReview", mock.Anything, mock.Anything).Return(model.InsertResult{InsertedID: "rv9"}, nil).Once()
		keys.On("Complete", mock.Anything, "review:cust@x.io:k-1", "rv9").Return(nil).Once()

		r, err := svc.Create(context.Background(), customer, "m1", service.ReviewInput{Rating: 5, ReviewText: "Best biryani in town", IdempotencyKey: "k-1"})
		require.NoError(t, err)
		assert.Equal(t, "rv9", r.ID)
		reviews.AssertExpectations(t)
		keys.AssertExpectations(t)
	})

	t.Run("stored_key_from_other_scope_is_not_replayed", func(t *testing.T) {
		reviews, meals, users, keys := new(MockReviews), new(MockMeals), new(MockUsers), new(MockKeys)
		svc := service.NewReviewService(reviews, meals, users, keys, nil, nil)
		users.On("GetUser", mock.Anything, "cust@x.io").Return(active, nil)
		meals.On("GetMeal", mock.Anything, "m1").Return(biryani, nil)
		keys.On("Reserve", mock.Anything, mock.Anything).
			Return(&model.IdempotencyKey{Scope: "order", Owner: "cust@x.io", ResourceID: "order-42"}, repository.ErrDuplicateKey)

		r, err := svc.Create(context.Background(), customer, "m1", service.ReviewInput{Rating: 5, ReviewText: "Best biryani in town", IdempotencyKey: "k-1"})
		assert.ErrorIs(t, err, service.ErrForbidden)
		assert.Nil(t, r)
		reviews.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
	})

	t.Run("invalid_rating_no_call", func(t *testing.T) {
		reviews, users := new(MockReviews), new(MockUsers)
		svc := service.NewReviewService(reviews, new(MockMeals), users, nil, nil, nil)

		_, err := svc.Create(context.Background(), customer, "m1", service.ReviewInput{Rating: 0, ReviewText: "Best biryani in town"})
		assert.ErrorIs(t, err, lifecycle.ErrInvalidRating)
		users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
		reviews.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
	})

	t.Run("fraud_blocked", func(t *testing.T) {
		reviews, users := new(MockReviews), new(MockUsers)
		svc := service.NewReviewService(reviews, new(MockMeals), users, nil, nil, nil)
		users.On("GetUser", mock.Anything, "cust@x.io").Return(&model.User{Email: "cust@x.io", UserStatus: model.UserFraud}, nil)

		_, err := svc.Create(context.Background(), customer, "m1", service.ReviewInput{Rating: 4, ReviewText: "Tasty and warm"})
		assert.ErrorIs(t, err, lifecycle.ErrAccountRestricted)
		reviews.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
	})
}

func TestReviewService_UpdateOnlyOwn(t *testing.T) {
	reviews := new(MockReviews)
	svc := service.NewReviewService(reviews, nil, nil, nil, nil, nil)
	reviews.On("ListReviewsByUser", mock.Anything, "cust@x.io").Return([]model.Review{{ID: "rv1", MealID: "m1", UserEmail: "cust@x.io"}}, nil)
	reviews.On("UpdateReview", mock.Anything, "rv1", remote.ReviewPatch{Rating: 3, ReviewText: "Okay, a bit salty"}).Return(model.UpdateResult{ModifiedCount: 1}, nil).Once()

	r, err := svc.Update(context.Background(), customer, "rv1", service.ReviewInput{Rating: 3, ReviewText: "Okay, a bit salty"})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Rating)

	_, err = svc.Update(context.Background(), customer, "rv-other", service.ReviewInput{Rating: 3, ReviewText: "Okay, a bit salty"})
	assert.ErrorIs(t, err, service.ErrReviewNotFound)
	reviews.AssertExpectations(t)
}
