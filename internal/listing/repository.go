// File: internal/listing/repository.go
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoOwnedMatch is returned by the conditional writes when no listing has
// both the given id and the given owner.
var ErrNoOwnedMatch = errors.New("listing: no listing matches id and owner")

// errDuplicateName is the conflict reported for a second listing with the same name.
var errDuplicateName = common.ErrConflict.WithMessage("Listing name already exists!")

// Repository defines the interface for listing data operations.
type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindByOwner(ctx context.Context, owner uuid.UUID) ([]Listing, error)
	Search(ctx context.Context, q Query) ([]Listing, error)
	// UpdateOwned applies patch only if the listing is still owned by owner.
	UpdateOwned(ctx context.Context, id, owner uuid.UUID, patch Patch) (*Listing, error)
	// DeleteOwned removes the listing only if it is still owned by owner.
	DeleteOwned(ctx context.Context, id, owner uuid.UUID) error
	DeleteByOwner(ctx context.Context, owner uuid.UUID) (int64, error)
	OwnerIDs(ctx context.Context) ([]uuid.UUID, error)
	FindBatch(ctx context.Context, offset, limit int) ([]Listing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, listing *Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errDuplicateName
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var listing Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithMessage("Listing not found!")
		}
		return nil, err
	}
	return &listing, nil
}

func (r *gormRepository) FindByOwner(ctx context.Context, owner uuid.UUID) ([]Listing, error) {
	listings := []Listing{}
	err := r.db.WithContext(ctx).
		Where("user_ref = ?", owner).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find listings for owner: %w", err)
	}
	return listings, nil
}

// Search applies q to the listings table. Only whitelisted columns reach ORDER BY.
func (r *gormRepository) Search(ctx context.Context, q Query) ([]Listing, error) {
	db := r.db.WithContext(ctx).Model(&Listing{})

	if q.SearchTerm != "" {
		db = db.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(q.SearchTerm))+"%")
	}
	if v, ok := q.Offer.Only(); ok {
		db = db.Where("offer = ?", v)
	}
	if v, ok := q.Furnished.Only(); ok {
		db = db.Where("furnished = ?", v)
	}
	if v, ok := q.Parking.Only(); ok {
		db = db.Where("parking = ?", v)
	}
	if t, ok := q.OnlyType(); ok {
		db = db.Where("type = ?", string(t))
	}

	listings := []Listing{}
	err := db.
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.Sort.Column()}, Desc: q.Sort.Descending}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Sort.Descending}).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return listings, nil
}

func (r *gormRepository) UpdateOwned(ctx context.Context, id, owner uuid.UUID, patch Patch) (*Listing, error) {
	updates := patch.columns()
	if patch.ImageURLs != nil {
		raw, err := json.Marshal(patch.ImageURLs)
		if err != nil {
			return nil, fmt.Errorf("failed to encode image urls: %w", err)
		}
		updates["image_urls"] = string(raw)
	}
	// Always touching updated_at keeps an empty patch distinguishable from a miss.
	updates["updated_at"] = time.Now().UTC()

	var updated Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Listing{}).
			Where("id = ? AND user_ref = ?", id, owner).
			Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return errDuplicateName
			}
			return fmt.Errorf("failed to update listing: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNoOwnedMatch
		}
		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *gormRepository) DeleteOwned(ctx context.Context, id, owner uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_ref = ?", id, owner).
		Delete(&Listing{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoOwnedMatch
	}
	return nil
}

func (r *gormRepository) DeleteByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_ref = ?", owner).Delete(&Listing{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete listings for owner: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormRepository) OwnerIDs(ctx context.Context) ([]uuid.UUID, error) {
	var owners []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&Listing{}).Distinct().Pluck("user_ref", &owners).Error; err != nil {
		return nil, fmt.Errorf("failed to list listing owners: %w", err)
	}
	return owners, nil
}

func (r *gormRepository) FindBatch(ctx context.Context, offset, limit int) ([]Listing, error) {
	listings := []Listing{}
	err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read listing batch: %w", err)
	}
	return listings, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
