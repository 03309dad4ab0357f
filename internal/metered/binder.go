// Package metered maps a user to at most one active mobile/hotspot IP.
// The pipelines only ever create the first binding and thereafter enforce
// it; rebinding is an administrative operation outside this package.
package metered

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	"gorm.io/gorm"
)

// Binder owns the metered connection bindings table.
type Binder struct {
	db *gorm.DB
}

// NewBinder constructs a Binder backed by GORM.
func NewBinder(db *gorm.DB) *Binder { return &Binder{db: db} }

// ActiveBinding returns the user's active binding, or nil when unbound.
func (b *Binder) ActiveBinding(ctx context.Context, userID uint64) (*models.MeteredConnectionBinding, error) {
	var binding models.MeteredConnectionBinding
	errFind := b.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		First(&binding).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("metered: lookup binding: %w", errFind)
	}
	return &binding, nil
}

// Bind creates the initial binding for the user. A user who already has
// a binding keeps it; the unique index on user_id backstops the race.
func (b *Binder) Bind(ctx context.Context, userID uint64, ip, connectionType string, at time.Time) error {
	existing, errLookup := b.ActiveBinding(ctx, userID)
	if errLookup != nil {
		return errLookup
	}
	if existing != nil {
		return nil
	}
	binding := models.MeteredConnectionBinding{
		UserID:         userID,
		IP:             strings.TrimSpace(ip),
		ConnectionType: connectionType,
		Active:         true,
		FirstUsedAt:    at,
		LastUsedAt:     at,
	}
	if errCreate := b.db.WithContext(ctx).Create(&binding).Error; errCreate != nil {
		return fmt.Errorf("metered: create binding: %w", errCreate)
	}
	return nil
}

// Touch stamps the binding's last-used time after an enforced login.
func (b *Binder) Touch(ctx context.Context, bindingID uint64, at time.Time) error {
	errUpdate := b.db.WithContext(ctx).Model(&models.MeteredConnectionBinding{}).
		Where("id = ?", bindingID).
		Update("last_used_at", at).Error
	if errUpdate != nil {
		return fmt.Errorf("metered: touch binding: %w", errUpdate)
	}
	return nil
}
