package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dmaidana/burger_kiosk/internal/models"
)

// GuestClientID is the client every order falls back to when the kiosk
// resolved no customer at checkout.
const GuestClientID = 5

const (
	StatusPending   = "pendiente"
	StatusPreparing = "elaboracion"
	StatusCompleted = "completado"
	StatusDelivered = "entregado"
	StatusCancelled = "cancelado"
)

// ValidStatuses are the names SetStatus accepts. "cancelado" is seeded and
// honored by the mutation guards but is not reachable through the API.
var ValidStatuses = []string{StatusPending, StatusPreparing, StatusCompleted, StatusDelivered}

// Service is the only writer of orders, their lines, line customizations
// and payment rows. Every mutation runs inside one transaction and leaves
// Order.Total equal to the sum of the current line subtotals.
type Service struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewService(db *gorm.DB, log *slog.Logger) *Service {
	return &Service{DB: db, Log: log}
}

type LineInput struct {
	ProductID    uint              `json:"id_producto"`
	Cantidad     uint              `json:"cantidad"`
	Subtotal     PriceHint         `json:"subtotal,omitempty"`
	Notas        string            `json:"notas,omitempty"`
	Ingredientes []IngredientInput `json:"ingredientes_personalizados,omitempty"`
}

type CreateInput struct {
	Lines         []LineInput `json:"productos"`
	PaymentMethod string      `json:"metodo_pago"`
	ClientID      *uint       `json:"id_cliente"`
	CouponCode    string      `json:"cupon,omitempty"`
}

type CreateResult struct {
	OrderID      uint      `json:"id_pedido"`
	FechaHora    time.Time `json:"fecha_hora"`
	Total        float64   `json:"total"`
	ClientID     uint      `json:"id_cliente"`
	StatusID     uint      `json:"id_estado"`
	PaymentID    uint      `json:"id_pago"`
	LinesCreated int       `json:"productos_creados"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: debe incluir al menos un producto en el pedido", ErrValidation)
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, fmt.Errorf("%w: debe especificar el método de pago", ErrValidation)
	}

	clientID := uint(GuestClientID)
	if in.ClientID != nil && *in.ClientID != 0 {
		clientID = *in.ClientID
	}

	var result CreateResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: el cliente con ID %d no existe", ErrValidation, clientID)
			}
			return err
		}

		var pending models.OrderStatus
		if err := tx.Where("nombre = ?", StatusPending).First(&pending).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no se encontró el estado %q", ErrValidation, StatusPending)
			}
			return err
		}

		var method models.PaymentMethod
		if err := tx.Where("nombre = ?", in.PaymentMethod).First(&method).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: el método de pago %q no existe", ErrValidation, in.PaymentMethod)
			}
			return err
		}

		ord := models.Order{
			FechaHora: time.Now().UTC(),
			ClientID:  client.ID,
			StatusID:  pending.ID,
		}
		if err := tx.Create(&ord).Error; err != nil {
			return err
		}

		created := 0
		for _, line := range in.Lines {
			if _, err := s.insertLine(tx, ord.ID, line); err != nil {
				return err
			}
			created++
		}

		total, err := s.recomputeTotal(tx, ord.ID)
		if err != nil {
			return err
		}

		payment := models.Payment{
			OrderID:         ord.ID,
			PaymentMethodID: method.ID,
			Monto:           total,
			Descripcion:     fmt.Sprintf("Pago pedido #%d", ord.ID),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if in.CouponCode != "" {
			if err := s.stampCoupon(tx, in.CouponCode, client.ID, ord.ID); err != nil {
				return err
			}
		}

		result = CreateResult{
			OrderID:      ord.ID,
			FechaHora:    ord.FechaHora,
			Total:        total,
			ClientID:     ord.ClientID,
			StatusID:     ord.StatusID,
			PaymentID:    payment.ID,
			LinesCreated: created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type AddLinesResult struct {
	Order          models.Order       `json:"pedido"`
	Added          []models.OrderLine `json:"productos_agregados"`
	TotalAdicional float64            `json:"total_adicional"`
}

func (s *Service) AddLines(ctx context.Context, orderID uint, lines []LineInput) (*AddLinesResult, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: debe incluir al menos un producto para agregar al pedido", ErrValidation)
	}

	var result AddLinesResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ord, statusName, err := s.orderWithStatus(tx, orderID)
		if err != nil {
			return err
		}
		if err := guardMutable(statusName); err != nil {
			return err
		}

		before := ord.Total
		added := make([]models.OrderLine, 0, len(lines))
		for _, line := range lines {
			created, err := s.insertLine(tx, ord.ID, line)
			if err != nil {
				return err
			}
			added = append(added, *created)
		}

		total, err := s.recomputeTotal(tx, ord.ID)
		if err != nil {
			return err
		}
		ord.Total = total

		result = AddLinesResult{Order: ord, Added: added, TotalAdicional: total - before}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type RemoveLineResult struct {
	Order             models.Order `json:"pedido"`
	SubtotalEliminado float64      `json:"subtotal_eliminado"`
}

func (s *Service) RemoveLine(ctx context.Context, orderID, lineID uint) (*RemoveLineResult, error) {
	var result RemoveLineResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ord, statusName, err := s.orderWithStatus(tx, orderID)
		if err != nil {
			return err
		}

		var line models.OrderLine
		if err := tx.Where("id = ? AND order_id = ?", lineID, orderID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no se encontró el producto %d en el pedido %d", ErrNotFound, lineID, orderID)
			}
			return err
		}

		if err := guardMutable(statusName); err != nil {
			return err
		}

		if err := tx.Where("order_line_id = ?", line.ID).Delete(&models.OrderLineIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&line).Error; err != nil {
			return err
		}

		total, err := s.recomputeTotal(tx, ord.ID)
		if err != nil {
			return err
		}
		ord.Total = total

		result = RemoveLineResult{Order: ord, SubtotalEliminado: line.Subtotal}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type StatusResult struct {
	Order  models.Order `json:"pedido"`
	Estado string       `json:"estado"`
}

func (s *Service) SetStatus(ctx context.Context, orderID uint, statusName string) (*StatusResult, error) {
	valid := false
	for _, name := range ValidStatuses {
		if name == statusName {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("%w: estado inválido, debe ser uno de: %s",
			ErrValidation, strings.Join(ValidStatuses, ", "))
	}

	var result StatusResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ord models.Order
		if err := tx.First(&ord, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no se encontró el pedido con ID %d", ErrNotFound, orderID)
			}
			return err
		}

		var status models.OrderStatus
		if err := tx.Where("nombre = ?", statusName).First(&status).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: el estado %q no existe", ErrValidation, statusName)
			}
			return err
		}

		if err := tx.Model(&ord).Update("status_id", status.ID).Error; err != nil {
			return err
		}
		ord.StatusID = status.ID

		result = StatusResult{Order: ord, Estado: status.Nombre}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type DeleteResult struct {
	OrderID      uint    `json:"id_pedido_eliminado"`
	Total        float64 `json:"total_eliminado"`
	LinesDeleted int     `json:"productos_eliminados"`
}

// Delete removes the whole order aggregate: line customizations first,
// then lines, payment rows, coupon stamps and finally the order itself.
// The cascade is manual and ordered, children before parents.
func (s *Service) Delete(ctx context.Context, orderID uint) (*DeleteResult, error) {
	var result DeleteResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ord models.Order
		if err := tx.First(&ord, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no se encontró el pedido con ID %d", ErrNotFound, orderID)
			}
			return err
		}

		var lineIDs []uint
		if err := tx.Model(&models.OrderLine{}).Where("order_id = ?", orderID).Pluck("id", &lineIDs).Error; err != nil {
			return err
		}

		if len(lineIDs) > 0 {
			if err := tx.Where("order_line_id IN ?", lineIDs).Delete(&models.OrderLineIngredient{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		// coupons belong to clients, so a deleted order releases them
		if err := tx.Model(&models.Coupon{}).Where("order_id = ?", orderID).Update("order_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&ord).Error; err != nil {
			return err
		}

		result = DeleteResult{OrderID: ord.ID, Total: ord.Total, LinesDeleted: len(lineIDs)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// insertLine prices one requested line and persists it with its ingredient
// customizations. The stored subtotal is always the server-side computed
// value; a client price hint is only logged when it disagrees.
func (s *Service) insertLine(tx *gorm.DB, orderID uint, line LineInput) (*models.OrderLine, error) {
	unit, err := resolveUnitPrice(tx, line.ProductID, line.Ingredientes)
	if err != nil {
		return nil, err
	}

	qty := line.Cantidad
	if qty == 0 {
		qty = 1
	}
	subtotal := unit * float64(qty)

	if line.Subtotal != "" {
		if hint, err := ParsePrice(string(line.Subtotal)); err == nil && math.Abs(hint-subtotal) > 0.009 {
			s.Log.Warn("subtotal del cliente difiere del calculado",
				"id_producto", line.ProductID,
				"subtotal_cliente", hint,
				"subtotal_calculado", subtotal)
		}
	}

	created := models.OrderLine{
		OrderID:   orderID,
		ProductID: line.ProductID,
		Subtotal:  subtotal,
		Cantidad:  qty,
		Notas:     line.Notas,
	}
	if err := tx.Create(&created).Error; err != nil {
		return nil, err
	}

	for _, ing := range line.Ingredientes {
		qty := ing.Cantidad
		if qty == 0 {
			qty = 1
		}
		row := models.OrderLineIngredient{
			OrderLineID:  created.ID,
			IngredientID: ing.IngredientID,
			Cantidad:     qty,
			EsExtra:      ing.EsExtra,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
	}
	return &created, nil
}

// recomputeTotal derives the order total from the stored line subtotals
// and persists it, all inside the caller's transaction. Deriving instead
// of adjusting a stored value keeps concurrent line mutations from losing
// updates on the total.
func (s *Service) recomputeTotal(tx *gorm.DB, orderID uint) (float64, error) {
	var total float64
	if err := tx.Model(&models.OrderLine{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(subtotal), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Update("total", total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) orderWithStatus(tx *gorm.DB, orderID uint) (models.Order, string, error) {
	var ord models.Order
	if err := tx.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ord, "", fmt.Errorf("%w: no se encontró el pedido con ID %d", ErrNotFound, orderID)
		}
		return ord, "", err
	}
	var status models.OrderStatus
	if err := tx.First(&status, ord.StatusID).Error; err != nil {
		return ord, "", err
	}
	return ord, status.Nombre, nil
}

func guardMutable(statusName string) error {
	if statusName == StatusDelivered || statusName == StatusCancelled {
		return fmt.Errorf("%w: no se pueden modificar productos de un pedido en estado %q", ErrInvalidState, statusName)
	}
	return nil
}

func (s *Service) stampCoupon(tx *gorm.DB, code string, clientID, orderID uint) error {
	var coupon models.Coupon
	if err := tx.Where("codigo = ? AND client_id = ?", code, clientID).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: el cupón %q no pertenece al cliente %d", ErrValidation, code, clientID)
		}
		return err
	}
	if coupon.OrderID != nil {
		return fmt.Errorf("%w: el cupón %q ya fue utilizado", ErrValidation, code)
	}
	return tx.Model(&coupon).Update("order_id", orderID).Error
}
