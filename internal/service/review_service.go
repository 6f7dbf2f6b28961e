package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/cache"
	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
)

type ReviewInput struct {
	Rating         int
	ReviewText     string
	IdempotencyKey string
}

type ReviewService struct {
	reviews ReviewStore
	meals   MealStore
	users   UserStore
	keys    IdempotencyRepository
	cache   *cache.Cache
	inv     *Invalidator
}

func NewReviewService(reviews ReviewStore, meals MealStore, users UserStore, keys IdempotencyRepository, c *cache.Cache, inv *Invalidator) *ReviewService {
	return &ReviewService{reviews: reviews, meals: meals, users: users, keys: keys, cache: c, inv: inv}
}

func userReviewsKey(email string) string { return cache.Key(keyReviews, "user", email) }
func mealReviewsKey(id string) string    { return cache.Key(keyReviews, "meal", id) }

// Create deja una reseña. Usuarios fraud quedan bloqueados.
func (s *ReviewService) Create(ctx context.Context, caller Caller, mealID string, in ReviewInput) (*model.Review, error) {
	if err := lifecycle.ValidateReview(in.Rating, in.ReviewText); err != nil {
		return nil, err
	}
	u, err := loadUser(ctx, s.users, s.cache, caller.Email)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanWrite(*u); err != nil {
		return nil, err
	}
	meal, err := s.meals.GetMeal(ctx, mealID)
	if err != nil {
		return nil, mapNotFound(err, ErrMealNotFound)
	}

	review := model.Review{
		MealID:     meal.ID,
		MealName:   meal.FoodName,
		UserEmail:  caller.Email,
		UserName:   u.DisplayName,
		UserImage:  u.PhotoURL,
		Rating:     in.Rating,
		ReviewText: in.ReviewText,
		ReviewDate: time.Now().UTC(),
	}
	id, replayed, err := once(ctx, s.keys, in.IdempotencyKey, "review", caller.Email, func() (string, error) {
		res, err := s.reviews.CreateReview(ctx, review)
		return res.InsertedID, err
	})
	if err != nil {
		return nil, err
	}
	review.ID = id
	if !replayed {
		log.Info().Str("review_id", id).Str("meal_id", mealID).Int("rating", in.Rating).Msg("review: created")
		s.inv.Invalidate(ctx, mealReviewsKey(mealID), userReviewsKey(caller.Email), cache.Key(keyReviews, "all"), mealKey(mealID), keyMeals)
	}
	return &review, nil
}

func (s *ReviewService) Update(ctx context.Context, caller Caller, id string, in ReviewInput) (*model.Review, error) {
	if err := lifecycle.ValidateReview(in.Rating, in.ReviewText); err != nil {
		return nil, err
	}
	review, err := s.own(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.reviews.UpdateReview(ctx, id, remote.ReviewPatch{Rating: in.Rating, ReviewText: in.ReviewText}); err != nil {
		return nil, mapNotFound(err, ErrReviewNotFound)
	}
	review.Rating = in.Rating
	review.ReviewText = in.ReviewText
	s.inv.Invalidate(ctx, mealReviewsKey(review.MealID), userReviewsKey(caller.Email), cache.Key(keyReviews, "all"), mealKey(review.MealID), keyMeals)
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, caller Caller, id string) error {
	review, err := s.own(ctx, caller, id)
	if err != nil {
		return err
	}
	if _, err := s.reviews.DeleteReview(ctx, id); err != nil {
		return mapNotFound(err, ErrReviewNotFound)
	}
	log.Info().Str("review_id", id).Str("by", caller.Email).Msg("review: deleted")
	s.inv.Invalidate(ctx, mealReviewsKey(review.MealID), userReviewsKey(caller.Email), cache.Key(keyReviews, "all"), mealKey(review.MealID), keyMeals)
	return nil
}

// own busca la reseña entre las del usuario; las ajenas no se encuentran.
func (s *ReviewService) own(ctx context.Context, caller Caller, id string) (*model.Review, error) {
	mine, err := s.reviews.ListReviewsByUser(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	for _, r := range mine {
		if r.ID == id {
			out := r
			return &out, nil
		}
	}
	return nil, ErrReviewNotFound
}

func (s *ReviewService) ListForMeal(ctx context.Context, mealID string) ([]model.Review, error) {
	return fetch(ctx, s.cache, mealReviewsKey(mealID), func(ctx context.Context) ([]model.Review, error) {
		return s.reviews.ListReviewsByMeal(ctx, mealID)
	})
}

func (s *ReviewService) ListMine(ctx context.Context, caller Caller) ([]model.Review, error) {
	return fetch(ctx, s.cache, userReviewsKey(caller.Email), func(ctx context.Context) ([]model.Review, error) {
		return s.reviews.ListReviewsByUser(ctx, caller.Email)
	})
}

func (s *ReviewService) ListAll(ctx context.Context) ([]model.Review, error) {
	return fetch(ctx, s.cache, cache.Key(keyReviews, "all"), func(ctx context.Context) ([]model.Review, error) {
		return s.reviews.ListReviews(ctx)
	})
}
