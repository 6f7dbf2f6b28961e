package service

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/cache"
	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
)

// MealPageSize es el tamaño de página del listado público.
const MealPageSize = 10

type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// MealFilter se aplica sobre la página traída del store.
type MealFilter struct {
	Page      int
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	Sort      SortOrder
}

type MealListing struct {
	Meals   []model.Meal `json:"meals"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	HasNext bool         `json:"hasNext"`
}

type MealInput struct {
	FoodName              string
	Price                 float64
	Ingredients           []string
	EstimatedDeliveryTime string
	FoodDescription       string
	ChefsExperience       string
	DeliveryArea          string
	FoodImage             string
	Image                 io.Reader
	ImageName             string
	IdempotencyKey        string
}

type MealDetails struct {
	Meal    model.Meal     `json:"meal"`
	Reviews []model.Review `json:"reviews"`
}

type MealService struct {
	meals   MealStore
	reviews ReviewStore
	users   UserStore
	images  ImageUploader
	keys    IdempotencyRepository
	cache   *cache.Cache
	inv     *Invalidator
}

func NewMealService(meals MealStore, reviews ReviewStore, users UserStore, images ImageUploader, keys IdempotencyRepository, c *cache.Cache, inv *Invalidator) *MealService {
	return &MealService{meals: meals, reviews: reviews, users: users, images: images, keys: keys, cache: c, inv: inv}
}

func mealKey(id string) string { return cache.Key(keyMeal, id) }

func (s *MealService) List(ctx context.Context, f MealFilter) (MealListing, error) {
	if f.Page < 0 {
		f.Page = 0
	}
	q := remote.MealQuery{Limit: MealPageSize, Skip: f.Page * MealPageSize, SortOrder: string(f.Sort)}
	key := cache.Key(keyMeals, "page", string(f.Sort), strconv.Itoa(f.Page))
	page, err := fetch(ctx, s.cache, key, func(ctx context.Context) (model.MealPage, error) {
		return s.meals.ListMeals(ctx, q)
	})
	if err != nil {
		return MealListing{}, err
	}
	return MealListing{
		Meals:   FilterMeals(page.Meals, f),
		Total:   page.Total,
		Page:    f.Page,
		HasNext: (f.Page+1)*MealPageSize < page.Total,
	}, nil
}

// FilterMeals aplica búsqueda (nombre, chef, zona), rango de precio, rating
// mínimo y orden por precio. No modifica meals.
func FilterMeals(meals []model.Meal, f MealFilter) []model.Meal {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]model.Meal, 0, len(meals))
	for _, m := range meals {
		if term != "" &&
			!strings.Contains(strings.ToLower(m.FoodName), term) &&
			!strings.Contains(strings.ToLower(m.ChefName), term) &&
			!strings.Contains(strings.ToLower(m.DeliveryArea), term) {
			continue
		}
		if f.MinPrice != nil && m.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && m.Price > *f.MaxPrice {
			continue
		}
		if f.MinRating != nil && m.Rating < *f.MinRating {
			continue
		}
		out = append(out, m)
	}
	switch f.Sort {
	case SortAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}

func (s *MealService) Get(ctx context.Context, id string) (*MealDetails, error) {
	meal, err := fetch(ctx, s.cache, mealKey(id), func(ctx context.Context) (*model.Meal, error) {
		return s.meals.GetMeal(ctx, id)
	})
	if err != nil {
		return nil, mapNotFound(err, ErrMealNotFound)
	}
	reviews, err := fetch(ctx, s.cache, cache.Key(keyReviews, "meal", id), func(ctx context.Context) ([]model.Review, error) {
		return s.reviews.ListReviewsByMeal(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &MealDetails{Meal: *meal, Reviews: reviews}, nil
}

func (s *MealService) ListMine(ctx context.Context, caller Caller) ([]model.Meal, error) {
	u, err := loadUser(ctx, s.users, s.cache, caller.Email)
	if err != nil {
		return nil, err
	}
	if u.ChefID == "" {
		return nil, ErrNotChef
	}
	return fetch(ctx, s.cache, cache.Key(keyMeals, "chef", u.ChefID), func(ctx context.Context) ([]model.Meal, error) {
		return s.meals.ListChefMeals(ctx, u.ChefID)
	})
}

// Create publica una comida del chef. Usuarios fraud quedan bloqueados.
func (s *MealService) Create(ctx context.Context, caller Caller, in MealInput) (*model.Meal, error) {
	u, err := loadUser(ctx, s.users, s.cache, caller.Email)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanWrite(*u); err != nil {
		return nil, err
	}
	if u.ChefID == "" {
		return nil, ErrNotChef
	}

	meal := model.Meal{
		FoodName:              in.FoodName,
		FoodImage:             in.FoodImage,
		Price:                 in.Price,
		Ingredients:           in.Ingredients,
		EstimatedDeliveryTime: in.EstimatedDeliveryTime,
		FoodDescription:       in.FoodDescription,
		ChefID:                u.ChefID,
		ChefName:              u.DisplayName,
		ChefsExperience:       in.ChefsExperience,
		UserEmail:             caller.Email,
		DeliveryArea:          in.DeliveryArea,
		CreatedDate:           time.Now().UTC(),
	}
	if err := lifecycle.ValidateMeal(meal); err != nil {
		return nil, err
	}
	if in.Image == nil && meal.FoodImage == "" {
		return nil, ErrImageRequired
	}

	id, replayed, err := once(ctx, s.keys, in.IdempotencyKey, "meal", caller.Email, func() (string, error) {
		if in.Image != nil {
			url, err := s.images.Upload(ctx, in.ImageName, in.Image)
			if err != nil {
				return "", err
			}
			meal.FoodImage = url
		}
		res, err := s.meals.CreateMeal(ctx, meal)
		return res.InsertedID, err
	})
	if err != nil {
		return nil, err
	}
	meal.ID = id
	if !replayed {
		log.Info().Str("meal_id", id).Str("chef_id", u.ChefID).Str("name", meal.FoodName).Msg("meal: created")
		s.inv.Invalidate(ctx, keyMeals)
	}
	return &meal, nil
}

// Update reemplaza los datos editables de una comida propia.
func (s *MealService) Update(ctx context.Context, caller Caller, id string, in MealInput) (*model.Meal, error) {
	current, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	meal := *current
	meal.FoodName = in.FoodName
	meal.Price = in.Price
	meal.Ingredients = in.Ingredients
	meal.EstimatedDeliveryTime = in.EstimatedDeliveryTime
	meal.FoodDescription = in.FoodDescription
	meal.ChefsExperience = in.ChefsExperience
	meal.DeliveryArea = in.DeliveryArea
	if in.FoodImage != "" {
		meal.FoodImage = in.FoodImage
	}
	if err := lifecycle.ValidateMeal(meal); err != nil {
		return nil, err
	}
	if in.Image != nil {
		url, err := s.images.Upload(ctx, in.ImageName, in.Image)
		if err != nil {
			return nil, err
		}
		meal.FoodImage = url
	}

	// el store no acepta el _id en el body del PUT
	body := meal
	body.ID = ""
	if _, err := s.meals.UpdateMeal(ctx, id, body); err != nil {
		return nil, mapNotFound(err, ErrMealNotFound)
	}
	s.inv.Invalidate(ctx, keyMeals, mealKey(id))
	return &meal, nil
}

func (s *MealService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	if _, err := s.meals.DeleteMeal(ctx, id); err != nil {
		return mapNotFound(err, ErrMealNotFound)
	}
	log.Info().Str("meal_id", id).Str("by", caller.Email).Msg("meal: deleted")
	s.inv.Invalidate(ctx, keyMeals, mealKey(id))
	return nil
}

func (s *MealService) owned(ctx context.Context, caller Caller, id string) (*model.Meal, error) {
	u, err := loadUser(ctx, s.users, s.cache, caller.Email)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanWrite(*u); err != nil {
		return nil, err
	}
	meal, err := s.meals.GetMeal(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrMealNotFound)
	}
	if caller.Role != model.RoleAdmin && (u.ChefID == "" || meal.ChefID != u.ChefID) {
		return nil, ErrForbidden
	}
	return meal, nil
}
