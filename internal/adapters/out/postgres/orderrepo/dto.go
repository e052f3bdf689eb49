// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// Orders are stored in "orders" with their SKU lines in "order_lines".
package orderrepo

import (
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Latitude    float64        `gorm:"not null"`
	Longitude   float64        `gorm:"not null"`
	Priority    int            `gorm:"type:smallint;not null"`
	Status      int            `gorm:"type:smallint;not null;index"`
	WindowStart *time.Time     `gorm:"type:timestamptz"`
	WindowEnd   *time.Time     `gorm:"type:timestamptz"`
	Lines       []OrderLineDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderLineDTO is one SKU line. Position keeps the order in which lines were submitted.
type OrderLineDTO struct {
	OrderID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position     int       `gorm:"primaryKey"`
	SKUCode      string    `gorm:"type:varchar(64);not null"`
	Quantity     int       `gorm:"not null"`
	UnitWeightKg float64   `gorm:"not null"`
	UnitVolumeM3 float64   `gorm:"not null"`
	Temperature  int       `gorm:"type:smallint;not null"`
	Fragile      bool      `gorm:"not null"`
}

// TableName specifies the database table name for SKU lines.
func (OrderLineDTO) TableName() string {
	return "order_lines"
}

func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Google()

	dto := OrderDTO{
		ID:        id,
		Latitude:  o.Destination().Lat(),
		Longitude: o.Destination().Lon(),
		Priority:  int(o.Priority()),
		Status:    int(o.Status()),
	}
	if w := o.Window(); w != nil {
		start, end := w.Start(), w.End()
		dto.WindowStart = &start
		dto.WindowEnd = &end
	}

	lines := o.Lines()
	dto.Lines = make([]OrderLineDTO, 0, len(lines))
	for i, l := range lines {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			OrderID:      id,
			Position:     i,
			SKUCode:      l.Code(),
			Quantity:     l.Quantity(),
			UnitWeightKg: l.UnitWeightKg(),
			UnitVolumeM3: l.UnitVolumeM3(),
			Temperature:  int(l.Temperature()),
			Fragile:      l.Fragile(),
		})
	}

	return dto
}

// toDomain rebuilds the aggregate with RestoreOrder; lines must be sorted by position.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	destination, err := kernel.NewLocation(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}

	var window *kernel.TimeWindow
	if dto.WindowStart != nil && dto.WindowEnd != nil {
		w, winErr := kernel.NewTimeWindow(dto.WindowStart.UTC(), dto.WindowEnd.UTC())
		if winErr != nil {
			return nil, winErr
		}
		window = &w
	}

	lines := make([]order.SKULine, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		line, lineErr := order.NewSKULine(
			l.SKUCode,
			l.Quantity,
			l.UnitWeightKg,
			l.UnitVolumeM3,
			order.TemperatureClass(l.Temperature),
			l.Fragile,
		)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return order.RestoreOrder(id, destination, lines, window, order.Priority(dto.Priority), order.Status(dto.Status))
}
