package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/cache"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

type FavoriteService struct {
	favorites FavoriteStore
	meals     MealStore
	keys      IdempotencyRepository
	cache     *cache.Cache
	inv       *Invalidator
}

func NewFavoriteService(favorites FavoriteStore, meals MealStore, keys IdempotencyRepository, c *cache.Cache, inv *Invalidator) *FavoriteService {
	return &FavoriteService{favorites: favorites, meals: meals, keys: keys, cache: c, inv: inv}
}

func favoritesKey(email string) string { return cache.Key(keyFavorites, email) }

// la clave es fija por (usuario, comida): dos "agregar" simultáneos no pasan
// los dos el chequeo previo
func favoriteKey(email, mealID string) string { return scopedKey(scopeFavorite, email, mealID) }

const scopeFavorite = "favorite"

func (s *FavoriteService) Add(ctx context.Context, caller Caller, mealID string) (*model.Favorite, error) {
	existing, err := s.favorites.FindFavorites(ctx, caller.Email, mealID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrAlreadyFavorite
	}
	meal, err := s.meals.GetMeal(ctx, mealID)
	if err != nil {
		return nil, mapNotFound(err, ErrMealNotFound)
	}

	fav := model.Favorite{
		UserEmail: caller.Email,
		MealID:    meal.ID,
		MealName:  meal.FoodName,
		ChefID:    meal.ChefID,
		ChefName:  meal.ChefName,
		Price:     meal.Price,
		AddedTime: time.Now().UTC(),
	}
	id, replayed, err := once(ctx, s.keys, mealID, scopeFavorite, caller.Email, func() (string, error) {
		res, err := s.favorites.CreateFavorite(ctx, fav)
		return res.InsertedID, err
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return nil, ErrAlreadyFavorite
	}
	fav.ID = id
	log.Info().Str("favorite_id", id).Str("meal_id", mealID).Str("user", caller.Email).Msg("favorite: added")
	s.inv.Invalidate(ctx, favoritesKey(caller.Email))
	return &fav, nil
}

func (s *FavoriteService) Remove(ctx context.Context, caller Caller, id string) error {
	mine, err := s.favorites.ListFavorites(ctx, caller.Email)
	if err != nil {
		return err
	}
	var fav *model.Favorite
	for i := range mine {
		if mine[i].ID == id {
			fav = &mine[i]
			break
		}
	}
	if fav == nil {
		return ErrFavoriteNotFound
	}
	if _, err := s.favorites.DeleteFavorite(ctx, id); err != nil {
		return mapNotFound(err, ErrFavoriteNotFound)
	}
	if s.keys != nil {
		if err := s.keys.Release(ctx, favoriteKey(caller.Email, fav.MealID)); err != nil {
			log.Warn().Err(err).Str("favorite_id", id).Msg("favorite: failed to release key")
		}
	}
	s.inv.Invalidate(ctx, favoritesKey(caller.Email))
	return nil
}

func (s *FavoriteService) List(ctx context.Context, caller Caller) ([]model.Favorite, error) {
	return fetch(ctx, s.cache, favoritesKey(caller.Email), func(ctx context.Context) ([]model.Favorite, error) {
		return s.favorites.ListFavorites(ctx, caller.Email)
	})
}
