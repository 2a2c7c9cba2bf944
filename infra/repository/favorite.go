package repository

import (
	"context"

	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a favorites repository bound to the given session.
func NewFavoriteRepository(db *gorm.DB) *favoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*user.Favorite, error) {
	var models []Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	favorites := make([]*user.Favorite, 0, len(models))
	for i := range models {
		m := &models[i]
		favorites = append(favorites, &user.Favorite{
			ID:         m.ID,
			UserID:     m.UserID,
			Name:       m.Name,
			Value:      m.Value,
			Type:       m.Type,
			ColorStart: m.ColorStart,
			ColorEnd:   m.ColorEnd,
			CreatedAt:  m.CreatedAt,
		})
	}
	return favorites, nil
}

func (r *favoriteRepository) Create(ctx context.Context, f *user.Favorite) error {
	m := Favorite{
		ID:         f.ID,
		UserID:     f.UserID,
		Name:       f.Name,
		Value:      f.Value,
		Type:       f.Type,
		ColorStart: f.ColorStart,
		ColorEnd:   f.ColorEnd,
		CreatedAt:  f.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *favoriteRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Favorite{}).Error
}
