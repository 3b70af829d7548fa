package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dmaidana/burger_kiosk/internal/models"
)

type LineIngredientDetail struct {
	OrderLineID  uint    `json:"id_pedido_producto"`
	IngredientID uint    `json:"id_ingrediente"`
	Cantidad     uint    `json:"cantidad"`
	EsExtra      bool    `json:"es_extra"`
	Nombre       string  `json:"nombre"`
	Precio       float64 `json:"precio"`
}

type LineDetail struct {
	ID           uint                   `json:"id_pedido_producto"`
	OrderID      uint                   `json:"id_pedido"`
	ProductID    uint                   `json:"id_producto"`
	Subtotal     float64                `json:"subtotal"`
	Cantidad     uint                   `json:"cantidad"`
	Nombre       string                 `json:"nombre"`
	Descripcion  string                 `json:"descripcion"`
	PrecioBase   float64                `json:"precio_base"`
	Categoria    string                 `json:"categoria"`
	Ingredientes []LineIngredientDetail `json:"ingredientes_personalizados" gorm:"-"`
}

type Detail struct {
	OrderID   uint         `json:"id_pedido"`
	FechaHora time.Time    `json:"fecha_hora"`
	Total     float64      `json:"total"`
	ClientID  uint         `json:"id_cliente"`
	StatusID  uint         `json:"id_estado"`
	Cliente   string       `json:"cliente_nombre"`
	Email     string       `json:"cliente_email"`
	Telefono  string       `json:"cliente_telefono"`
	Estado    string       `json:"estado"`
	Lines     []LineDetail `json:"productos" gorm:"-"`
}

// Get returns the full order aggregate: header with client and status,
// every line with its product data and each line's customizations.
func (s *Service) Get(ctx context.Context, orderID uint) (*Detail, error) {
	db := s.DB.WithContext(ctx)

	var detail Detail
	err := db.Model(&models.Order{}).
		Select(`orders.id AS order_id, orders.fecha_hora, orders.total,
			orders.client_id, orders.status_id,
			clients.nombre AS cliente, clients.email, clients.telefono,
			order_statuses.nombre AS estado`).
		Joins("LEFT JOIN clients ON clients.id = orders.client_id").
		Joins("LEFT JOIN order_statuses ON order_statuses.id = orders.status_id").
		Where("orders.id = ?", orderID).
		Take(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no se encontró el pedido con ID %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	var lines []LineDetail
	err = db.Model(&models.OrderLine{}).
		Select(`order_lines.id, order_lines.order_id, order_lines.product_id,
			order_lines.subtotal, order_lines.cantidad,
			products.nombre, products.descripcion, products.precio_base,
			categories.nombre AS categoria`).
		Joins("JOIN products ON products.id = order_lines.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("order_lines.order_id = ?", orderID).
		Order("order_lines.id").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}

	for i := range lines {
		var ings []LineIngredientDetail
		err = db.Model(&models.OrderLineIngredient{}).
			Select(`order_line_ingredients.order_line_id,
				order_line_ingredients.ingredient_id,
				order_line_ingredients.cantidad, order_line_ingredients.es_extra,
				ingredients.nombre, ingredients.precio`).
			Joins("JOIN ingredients ON ingredients.id = order_line_ingredients.ingredient_id").
			Where("order_line_ingredients.order_line_id = ?", lines[i].ID).
			Scan(&ings).Error
		if err != nil {
			return nil, err
		}
		lines[i].Ingredientes = ings
	}
	detail.Lines = lines

	return &detail, nil
}

type ListFilter struct {
	ClientID      uint
	Status        string
	PaymentMethod string
	From          *time.Time
	To            *time.Time
}

type ListItem struct {
	OrderID    uint      `json:"id_pedido"`
	FechaHora  time.Time `json:"fecha_hora"`
	Total      float64   `json:"total"`
	ClientID   uint      `json:"id_cliente"`
	StatusID   uint      `json:"id_estado"`
	Cliente    string    `json:"cliente_nombre"`
	Estado     string    `json:"estado_nombre"`
	MetodoPago string    `json:"metodo_pago,omitempty"`
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]ListItem, error) {
	if f.Status != "" {
		valid := false
		for _, name := range ValidStatuses {
			if name == f.Status {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("%w: estado inválido, debe ser uno de: %s",
				ErrValidation, strings.Join(ValidStatuses, ", "))
		}
	}

	q := s.DB.WithContext(ctx).Model(&models.Order{}).
		Select(`orders.id AS order_id, orders.fecha_hora, orders.total,
			orders.client_id, orders.status_id,
			clients.nombre AS cliente, order_statuses.nombre AS estado`).
		Joins("LEFT JOIN clients ON clients.id = orders.client_id").
		Joins("LEFT JOIN order_statuses ON order_statuses.id = orders.status_id")

	if f.ClientID != 0 {
		q = q.Where("orders.client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("order_statuses.nombre = ?", f.Status)
	}
	if f.PaymentMethod != "" {
		q = q.Select(`orders.id AS order_id, orders.fecha_hora, orders.total,
			orders.client_id, orders.status_id,
			clients.nombre AS cliente, order_statuses.nombre AS estado,
			payment_methods.nombre AS metodo_pago`).
			Joins("JOIN payments ON payments.order_id = orders.id").
			Joins("JOIN payment_methods ON payment_methods.id = payments.payment_method_id").
			Where("payment_methods.nombre = ?", f.PaymentMethod)
	}
	if f.From != nil {
		q = q.Where("orders.fecha_hora >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("orders.fecha_hora <= ?", *f.To)
	}

	var items []ListItem
	if err := q.Order("orders.fecha_hora DESC").Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

type SummaryRow struct {
	ProductID     uint    `json:"id_producto"`
	Nombre        string  `json:"nombre"`
	PrecioBase    float64 `json:"precio_base"`
	CantidadTotal int64   `json:"cantidad_total"`
	SubtotalTotal float64 `json:"subtotal_total"`
}

type Summary struct {
	Pedido  ListItem     `json:"pedido"`
	Resumen []SummaryRow `json:"resumen_por_producto"`
}

// Summary groups the lines of one order per product.
func (s *Service) Summary(ctx context.Context, orderID uint) (*Summary, error) {
	db := s.DB.WithContext(ctx)

	var header ListItem
	err := db.Model(&models.Order{}).
		Select(`orders.id AS order_id, orders.fecha_hora, orders.total,
			orders.client_id, orders.status_id,
			clients.nombre AS cliente, order_statuses.nombre AS estado`).
		Joins("LEFT JOIN clients ON clients.id = orders.client_id").
		Joins("LEFT JOIN order_statuses ON order_statuses.id = orders.status_id").
		Where("orders.id = ?", orderID).
		Take(&header).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no se encontró el pedido con ID %d", ErrNotFound, orderID)
		}
		return nil, err
	}

	var rows []SummaryRow
	err = db.Model(&models.OrderLine{}).
		Select(`products.id AS product_id, products.nombre, products.precio_base,
			SUM(order_lines.cantidad) AS cantidad_total,
			SUM(order_lines.subtotal) AS subtotal_total`).
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("order_lines.order_id = ?", orderID).
		Group("products.id, products.nombre, products.precio_base").
		Order("cantidad_total DESC, products.nombre").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return &Summary{Pedido: header, Resumen: rows}, nil
}

type StatusCount struct {
	Estado   string `json:"estado"`
	Cantidad int64  `json:"cantidad"`
}

type ProductSales struct {
	ProductID        uint    `json:"id_producto"`
	Nombre           string  `json:"nombre"`
	Categoria        string  `json:"categoria"`
	UnidadesVendidas int64   `json:"unidades_vendidas"`
	VentasTotales    float64 `json:"ventas_totales"`
}

type IngredientCount struct {
	IngredientID    uint   `json:"id_ingrediente"`
	Nombre          string `json:"nombre"`
	VecesSolicitado int64  `json:"veces_solicitado"`
}

type MethodSales struct {
	MetodoPago      string  `json:"metodo_pago"`
	CantidadPedidos int64   `json:"cantidad_pedidos"`
	TotalVentas     float64 `json:"total_ventas"`
}

type Stats struct {
	TotalPedidos        int64             `json:"total_pedidos"`
	PorEstado           []StatusCount     `json:"pedidos_por_estado"`
	MasVendidos         []ProductSales    `json:"productos_mas_vendidos"`
	ExtrasMasPedidos    []IngredientCount `json:"ingredientes_extras_mas_solicitados"`
	VentasPorMetodoPago []MethodSales     `json:"ventas_por_metodo_pago"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	db := s.DB.WithContext(ctx)
	var stats Stats

	if err := db.Model(&models.Order{}).Count(&stats.TotalPedidos).Error; err != nil {
		return nil, err
	}

	err := db.Model(&models.Order{}).
		Select("order_statuses.nombre AS estado, COUNT(*) AS cantidad").
		Joins("JOIN order_statuses ON order_statuses.id = orders.status_id").
		Group("order_statuses.nombre").
		Scan(&stats.PorEstado).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.OrderLine{}).
		Select(`products.id AS product_id, products.nombre,
			categories.nombre AS categoria,
			SUM(order_lines.cantidad) AS unidades_vendidas,
			SUM(order_lines.subtotal) AS ventas_totales`).
		Joins("JOIN products ON products.id = order_lines.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Group("products.id, products.nombre, categories.nombre").
		Order("unidades_vendidas DESC").
		Limit(5).
		Scan(&stats.MasVendidos).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.OrderLineIngredient{}).
		Select(`ingredients.id AS ingredient_id, ingredients.nombre,
			SUM(order_line_ingredients.cantidad) AS veces_solicitado`).
		Joins("JOIN ingredients ON ingredients.id = order_line_ingredients.ingredient_id").
		Where("order_line_ingredients.es_extra = ?", true).
		Group("ingredients.id, ingredients.nombre").
		Order("veces_solicitado DESC").
		Limit(5).
		Scan(&stats.ExtrasMasPedidos).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Payment{}).
		Select(`payment_methods.nombre AS metodo_pago,
			COUNT(payments.id) AS cantidad_pedidos,
			SUM(payments.monto) AS total_ventas`).
		Joins("JOIN payment_methods ON payment_methods.id = payments.payment_method_id").
		Group("payment_methods.nombre").
		Scan(&stats.VentasPorMetodoPago).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
