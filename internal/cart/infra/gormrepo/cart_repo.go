package gormrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evermall/storefront/internal/cart/domain"
)

const statusActive = "active"

type cartRow struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_active_cart_user,where:status = 'active'"`
	Status    string    `gorm:"column:status;not null"`
	Lines     []lineRow `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (cartRow) TableName() string { return "carts" }

type lineRow struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID            uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_product_variant"`
	ProductID         string    `gorm:"column:product_id;not null;uniqueIndex:ux_cart_product_variant"`
	VariantID         string    `gorm:"column:variant_id;uniqueIndex:ux_cart_product_variant"`
	ExternalRef       string    `gorm:"column:external_ref"`
	Name              string    `gorm:"column:name"`
	Image             string    `gorm:"column:image"`
	Quantity          int32     `gorm:"column:quantity;not null"`
	UnitAmount        int64     `gorm:"column:unit_amount;not null"`
	Currency          string    `gorm:"column:currency;not null"`
	FulfillmentSource string    `gorm:"column:fulfillment_source"`
	OriginCountry     string    `gorm:"column:origin_country"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (lineRow) TableName() string { return "cart_lines" }

// Migrate creates or updates the cart tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&cartRow{}, &lineRow{})
}

type CartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) Get(ctx context.Context, userID string) (domain.Cart, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.Cart{}, err
	}

	var row cartRow
	err = r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ? AND status = ?", userUUID, statusActive).
		First(&row).Error
	if err != nil {
		return domain.Cart{}, err
	}
	return toDomain(row), nil
}

func (r *CartRepo) GetOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := r.Get(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Cart{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.Cart{}, err
	}
	row := cartRow{ID: uuid.New(), UserID: userUUID, Status: statusActive}
	createErr := r.db.WithContext(ctx).Create(&row).Error
	if createErr == nil {
		return r.Get(ctx, userID)
	}
	// lost the race against a concurrent create: the active cart exists now
	if isUniqueViolation(createErr) {
		return r.Get(ctx, userID)
	}
	return domain.Cart{}, createErr
}

func (r *CartRepo) UpsertLine(ctx context.Context, cartID string, line domain.Line) error {
	cartUUID, err := uuid.Parse(cartID)
	if err != nil {
		return err
	}

	row := lineRow{
		ID:                uuid.New(),
		CartID:            cartUUID,
		ProductID:         line.ProductID,
		VariantID:         line.VariantID,
		ExternalRef:       line.ExternalRef,
		Name:              line.Name,
		Image:             line.Image,
		Quantity:          line.Quantity,
		UnitAmount:        line.UnitPrice.Amount,
		Currency:          line.UnitPrice.Currency,
		FulfillmentSource: line.FulfillmentSource,
		OriginCountry:     line.OriginCountry,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_lines.quantity + EXCLUDED.quantity"),
		}),
	}).Create(&row).Error
}

func (r *CartRepo) SetQuantity(ctx context.Context, cartID, lineID string, quantity int32) error {
	cartUUID, err := uuid.Parse(cartID)
	if err != nil {
		return err
	}
	lineUUID, err := uuid.Parse(lineID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&lineRow{}).
		Where("cart_id = ? AND id = ?", cartUUID, lineUUID).
		Update("quantity", quantity).Error
}

func (r *CartRepo) RemoveLine(ctx context.Context, cartID, lineID string) error {
	cartUUID, err := uuid.Parse(cartID)
	if err != nil {
		return err
	}
	lineUUID, err := uuid.Parse(lineID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartUUID, lineUUID).
		Delete(&lineRow{}).Error
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	cartUUID, err := uuid.Parse(cartID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartUUID).
		Delete(&lineRow{}).Error
}

func toDomain(row cartRow) domain.Cart {
	lines := make([]domain.Line, 0, len(row.Lines))
	for _, l := range row.Lines {
		lines = append(lines, domain.Line{
			ID:                l.ID.String(),
			ProductID:         l.ProductID,
			VariantID:         l.VariantID,
			ExternalRef:       l.ExternalRef,
			Name:              l.Name,
			Image:             l.Image,
			Quantity:          l.Quantity,
			UnitPrice:         domain.Money{Currency: l.Currency, Amount: l.UnitAmount},
			FulfillmentSource: l.FulfillmentSource,
			OriginCountry:     l.OriginCountry,
		})
	}
	return domain.Cart{
		ID:        row.ID.String(),
		UserID:    row.UserID.String(),
		Status:    row.Status,
		Lines:     lines,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
