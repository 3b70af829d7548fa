// Package cart defines the schema of the kiosk's client-held cart and its
// single synchronization point with the backend: a cart is loaded once when
// the screen opens, saved once per mutation, and converted to a checkout
// request with Snapshot. The backend never sees cart state before checkout.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/dmaidana/burger_kiosk/internal/service/order"
)

// StorageKey is the fixed key the kiosk front end stores the cart under.
const StorageKey = "carrito"

// Store is the key-value storage the cart lives in. The kiosk front end
// backs it with browser local storage; tests use MemoryStore.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

type Ingredient struct {
	IngredientID uint `json:"id_ingrediente"`
	Cantidad     uint `json:"cantidad"`
	EsExtra      bool `json:"es_extra"`
}

type Line struct {
	ProductID    uint         `json:"id_producto"`
	Cantidad     uint         `json:"cantidad"`
	Precio       string       `json:"precio"`
	Ingredientes []Ingredient `json:"ingredientes_personalizados,omitempty"`
}

type Cart struct {
	Lines []Line
}

// Load reads the cart from the store. A missing key is an empty cart.
func Load(s Store) (*Cart, error) {
	raw, ok := s.Get(StorageKey)
	if !ok || raw == "" {
		return &Cart{}, nil
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("carrito corrupto: %w", err)
	}
	return &Cart{Lines: lines}, nil
}

func (c *Cart) Save(s Store) error {
	data, err := json.Marshal(c.Lines)
	if err != nil {
		return err
	}
	s.Set(StorageKey, string(data))
	return nil
}

func (c *Cart) Add(line Line) {
	if line.Cantidad == 0 {
		line.Cantidad = 1
	}
	c.Lines = append(c.Lines, line)
}

func (c *Cart) Remove(i int) {
	if i < 0 || i >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// Clear empties the cart and its stored copy; called on checkout success.
func (c *Cart) Clear(s Store) {
	c.Lines = nil
	s.Delete(StorageKey)
}

// Snapshot converts the cart into the checkout request. The displayed
// prices travel along as hints only; the server reprices every line.
func (c *Cart) Snapshot(paymentMethod string, clientID *uint) order.CreateInput {
	lines := make([]order.LineInput, 0, len(c.Lines))
	for _, l := range c.Lines {
		ings := make([]order.IngredientInput, 0, len(l.Ingredientes))
		for _, ing := range l.Ingredientes {
			ings = append(ings, order.IngredientInput{
				IngredientID: ing.IngredientID,
				Cantidad:     ing.Cantidad,
				EsExtra:      ing.EsExtra,
			})
		}
		lines = append(lines, order.LineInput{
			ProductID:    l.ProductID,
			Cantidad:     l.Cantidad,
			Subtotal:     order.PriceHint(l.Precio),
			Ingredientes: ings,
		})
	}
	return order.CreateInput{
		Lines:         lines,
		PaymentMethod: paymentMethod,
		ClientID:      clientID,
	}
}

// MemoryStore is an in-process Store for tests and headless kiosks.
type MemoryStore map[string]string

func (m MemoryStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MemoryStore) Set(key, value string) { m[key] = value }

func (m MemoryStore) Delete(key string) { delete(m, key) }
