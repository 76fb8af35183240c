package gormrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evermall/storefront/internal/checkout/domain"
)

type addressRow struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	FullName  string    `gorm:"column:full_name;not null"`
	Line1     string    `gorm:"column:line1;not null"`
	Line2     string    `gorm:"column:line2"`
	City      string    `gorm:"column:city;not null"`
	Zip       string    `gorm:"column:zip;not null"`
	Country   string    `gorm:"column:country;not null"`
	Phone     string    `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (addressRow) TableName() string { return "addresses" }

// Migrate creates or updates the address table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&addressRow{})
}

// AddressStore persists the user's saved shipping addresses.
type AddressStore struct {
	db *gorm.DB
}

func NewAddressStore(db *gorm.DB) *AddressStore {
	return &AddressStore{db: db}
}

func (s *AddressStore) List(ctx context.Context, userID string) ([]domain.Address, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	var rows []addressRow
	err = s.db.WithContext(ctx).
		Where("user_id = ?", userUUID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Address, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomain(r))
	}
	return out, nil
}

func (s *AddressStore) Create(ctx context.Context, userID string, addr domain.Address) (domain.Address, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.Address{}, err
	}

	row := addressRow{
		ID:       uuid.New(),
		UserID:   userUUID,
		FullName: addr.FullName,
		Line1:    addr.Line1,
		Line2:    addr.Line2,
		City:     addr.City,
		Zip:      addr.Zip,
		Country:  addr.Country,
		Phone:    addr.Phone,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Address{}, err
	}
	return toDomain(row), nil
}

func toDomain(r addressRow) domain.Address {
	return domain.Address{
		ID:       r.ID.String(),
		FullName: r.FullName,
		Line1:    r.Line1,
		Line2:    r.Line2,
		City:     r.City,
		Zip:      r.Zip,
		Country:  r.Country,
		Phone:    r.Phone,
	}
}
