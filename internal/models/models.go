package models

import (
	"time"
)

type Category struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id_categoria"`
	Nombre string `gorm:"uniqueIndex;not null"     json:"nombre"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id_producto"`
	Nombre      string  `gorm:"not null"                 json:"nombre"`
	Descripcion string  `json:"descripcion"`
	PrecioBase  float64 `gorm:"not null"                 json:"precio_base"`
	CategoryID  uint    `gorm:"index;not null"           json:"id_categoria"`
	Disponible  bool    `gorm:"default:true"             json:"disponible"`
}

type Ingredient struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id_ingrediente"`
	Nombre      string  `gorm:"not null"                 json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `gorm:"not null"                 json:"precio"`
	EsExtra     bool    `gorm:"default:false"            json:"es_extra"`
}

// ProductIngredient lists the base composition of a product: the
// ingredients it ships with by default and their quantity.
type ProductIngredient struct {
	ID           uint `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductID    uint `gorm:"index;not null"           json:"id_producto"`
	IngredientID uint `gorm:"index;not null"           json:"id_ingrediente"`
	Cantidad     uint `gorm:"default:1"                json:"cantidad"`
}

type Client struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id_cliente"`
	Nombre   string `gorm:"not null"                 json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
	DNI      string `gorm:"uniqueIndex"              json:"dni"`
}

type Coupon struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id_cupon"`
	ClientID         uint       `gorm:"index;not null"           json:"id_cliente"`
	OrderID          *uint      `gorm:"index"                    json:"id_pedido,omitempty"`
	Codigo           string     `gorm:"uniqueIndex;not null"     json:"codigo"`
	Descuento        float64    `gorm:"not null"                 json:"descuento"`
	FechaVencimiento *time.Time `json:"fecha_vencimiento,omitempty"`
}

type OrderStatus struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id_estado"`
	Nombre string `gorm:"uniqueIndex;not null"     json:"nombre"`
}

type PaymentMethod struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id_tipo_pago"`
	Nombre string `gorm:"uniqueIndex;not null"     json:"nombre"`
}

type Order struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id_pedido"`
	FechaHora time.Time `gorm:"index;not null"           json:"fecha_hora"`
	Total     float64   `gorm:"not null"                 json:"total"`
	ClientID  uint      `gorm:"index;not null"           json:"id_cliente"`
	StatusID  uint      `gorm:"index;not null"           json:"id_estado"`
}

type OrderLine struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id_pedido_producto"`
	OrderID   uint    `gorm:"index;not null"           json:"id_pedido"`
	ProductID uint    `gorm:"not null"                 json:"id_producto"`
	Subtotal  float64 `gorm:"not null"                 json:"subtotal"`
	Cantidad  uint    `gorm:"default:1"                json:"cantidad"`
	Notas     string  `json:"notas,omitempty"`
}

type OrderLineIngredient struct {
	ID           uint `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderLineID  uint `gorm:"index;not null"           json:"id_pedido_producto"`
	IngredientID uint `gorm:"not null"                 json:"id_ingrediente"`
	Cantidad     uint `gorm:"default:1"                json:"cantidad"`
	EsExtra      bool `gorm:"not null"                 json:"es_extra"`
}

type Payment struct {
	ID              uint    `gorm:"primaryKey;autoIncrement" json:"id_pago"`
	OrderID         uint    `gorm:"index;not null"           json:"id_pedido"`
	PaymentMethodID uint    `gorm:"not null"                 json:"id_tipo_pago"`
	Monto           float64 `gorm:"not null"                 json:"monto"`
	Descripcion     string  `json:"descripcion"`
}

type StaffUser struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}
