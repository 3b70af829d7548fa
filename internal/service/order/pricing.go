package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/dmaidana/burger_kiosk/internal/models"
)

// IngredientInput is one requested customization on an order line.
type IngredientInput struct {
	IngredientID uint `json:"id_ingrediente"`
	Cantidad     uint `json:"cantidad"`
	EsExtra      bool `json:"es_extra"`
}

// PriceHint carries the display price the kiosk showed the customer.
// The front end renders it as a formatted string ("$1.500,50") but older
// clients sent plain numbers, so both decode.
type PriceHint string

func (p *PriceHint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = PriceHint(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = PriceHint(n.String())
	return nil
}

// ParsePrice normalizes a display-formatted price: currency symbols and
// spaces are stripped, a comma decimal separator becomes a dot, and dots
// used as thousands separators are dropped. The result must be positive.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return 0, fmt.Errorf("precio vacío")
	}

	if strings.Contains(cleaned, ",") {
		// comma is the decimal separator, dots group thousands
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("precio inválido %q", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("precio no positivo %q", s)
	}
	return v, nil
}

type QuoteItem struct {
	Concepto string  `json:"concepto"`
	Precio   float64 `json:"precio"`
}

type Quote struct {
	Producto    string      `json:"producto"`
	PrecioTotal float64     `json:"precio_total"`
	Detalle     []QuoteItem `json:"detalle_precios"`
}

// PriceQuote estimates a customized product before it reaches the cart,
// itemizing the base price and each extra.
func (s *Service) PriceQuote(ctx context.Context, productID uint, ingredients []IngredientInput) (*Quote, error) {
	db := s.DB.WithContext(ctx)

	var product models.Product
	if err := db.Where("id = ? AND disponible = ?", productID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: el producto con ID %d no existe o no está disponible", ErrNotFound, productID)
		}
		return nil, err
	}

	quote := Quote{
		Producto:    product.Nombre,
		PrecioTotal: product.PrecioBase,
		Detalle:     []QuoteItem{{Concepto: "Precio base", Precio: product.PrecioBase}},
	}

	for _, ing := range ingredients {
		if !ing.EsExtra {
			continue
		}
		var info models.Ingredient
		if err := db.First(&info, ing.IngredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: el ingrediente con ID %d no existe", ErrNotFound, ing.IngredientID)
			}
			return nil, err
		}
		qty := ing.Cantidad
		if qty == 0 {
			qty = 1
		}
		cost := info.Precio * float64(qty)
		quote.PrecioTotal += cost
		quote.Detalle = append(quote.Detalle, QuoteItem{
			Concepto: fmt.Sprintf("Extra %s x%d", info.Nombre, qty),
			Precio:   cost,
		})
	}

	return &quote, nil
}

// resolveUnitPrice computes the authoritative unit price of a product with
// the requested customizations: base price plus every extra ingredient at
// its catalog price times quantity. Non-extra customizations (removals and
// substitutions of included components) do not change the price.
func resolveUnitPrice(tx *gorm.DB, productID uint, ingredients []IngredientInput) (float64, error) {
	var product models.Product
	if err := tx.Where("id = ? AND disponible = ?", productID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: el producto con ID %d no existe o no está disponible", ErrNotFound, productID)
		}
		return 0, err
	}

	price := product.PrecioBase
	for _, ing := range ingredients {
		if !ing.EsExtra {
			continue
		}
		var info models.Ingredient
		if err := tx.First(&info, ing.IngredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("%w: el ingrediente con ID %d no existe", ErrNotFound, ing.IngredientID)
			}
			return 0, err
		}
		qty := ing.Cantidad
		if qty == 0 {
			qty = 1
		}
		price += info.Precio * float64(qty)
	}
	return price, nil
}
