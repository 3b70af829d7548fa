package config

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dmaidana/burger_kiosk/internal/hash"
	"github.com/dmaidana/burger_kiosk/internal/models"
)

// Seed inserts the reference rows the order engine depends on: the order
// status enumeration, the payment methods and the guest client. It is
// idempotent and safe to run on every startup.
func Seed(db *gorm.DB, adminPassword string) error {
	statuses := []string{"pendiente", "elaboracion", "completado", "entregado", "cancelado"}
	for _, name := range statuses {
		st := models.OrderStatus{Nombre: name}
		if err := db.Where("nombre = ?", name).FirstOrCreate(&st).Error; err != nil {
			return fmt.Errorf("seed estado %q: %w", name, err)
		}
	}

	for _, name := range []string{"efectivo", "tarjeta", "qr"} {
		pm := models.PaymentMethod{Nombre: name}
		if err := db.Where("nombre = ?", name).FirstOrCreate(&pm).Error; err != nil {
			return fmt.Errorf("seed metodo de pago %q: %w", name, err)
		}
	}

	// The guest client must keep id 5: the checkout falls back to it when
	// no customer is resolved at the kiosk.
	clients := []models.Client{
		{ID: 1, Nombre: "Juan Perez", Email: "juan@example.com", Telefono: "1111", DNI: "30111222"},
		{ID: 2, Nombre: "Maria Gomez", Email: "maria@example.com", Telefono: "2222", DNI: "28555666"},
		{ID: 3, Nombre: "Carlos Lopez", Email: "carlos@example.com", Telefono: "3333", DNI: "33777888"},
		{ID: 4, Nombre: "Ana Diaz", Email: "ana@example.com", Telefono: "4444", DNI: "35999000"},
		{ID: 5, Nombre: "Invitado", Email: "", Telefono: "", DNI: ""},
	}
	for _, cl := range clients {
		existing := models.Client{}
		err := db.First(&existing, cl.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&cl).Error; err != nil {
				return fmt.Errorf("seed cliente %d: %w", cl.ID, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("seed cliente %d: %w", cl.ID, err)
		}
	}

	if err := seedCatalog(db); err != nil {
		return err
	}

	return seedAdmin(db, adminPassword)
}

func seedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	burgers := models.Category{Nombre: "hamburguesas"}
	sides := models.Category{Nombre: "acompañamientos"}
	drinks := models.Category{Nombre: "bebidas"}
	for _, cat := range []*models.Category{&burgers, &sides, &drinks} {
		if err := db.Where("nombre = ?", cat.Nombre).FirstOrCreate(cat).Error; err != nil {
			return err
		}
	}

	ingredients := []models.Ingredient{
		{Nombre: "medallon de carne", Precio: 1200, EsExtra: true},
		{Nombre: "cheddar", Precio: 500, EsExtra: true},
		{Nombre: "bacon", Precio: 700, EsExtra: true},
		{Nombre: "lechuga", Precio: 0},
		{Nombre: "tomate", Precio: 0},
		{Nombre: "cebolla", Precio: 0},
		{Nombre: "huevo", Precio: 400, EsExtra: true},
	}
	for i := range ingredients {
		if err := db.Create(&ingredients[i]).Error; err != nil {
			return err
		}
	}

	products := []models.Product{
		{Nombre: "Clasica", Descripcion: "Medallon, lechuga y tomate", PrecioBase: 4500, CategoryID: burgers.ID, Disponible: true},
		{Nombre: "Doble Cheddar", Descripcion: "Doble medallon con cheddar", PrecioBase: 6200, CategoryID: burgers.ID, Disponible: true},
		{Nombre: "Papas fritas", Descripcion: "Porcion grande", PrecioBase: 2300, CategoryID: sides.ID, Disponible: true},
		{Nombre: "Gaseosa", Descripcion: "500ml", PrecioBase: 1500, CategoryID: drinks.ID, Disponible: true},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			return err
		}
	}

	base := []models.ProductIngredient{
		{ProductID: products[0].ID, IngredientID: ingredients[0].ID, Cantidad: 1},
		{ProductID: products[0].ID, IngredientID: ingredients[3].ID, Cantidad: 1},
		{ProductID: products[0].ID, IngredientID: ingredients[4].ID, Cantidad: 1},
		{ProductID: products[1].ID, IngredientID: ingredients[0].ID, Cantidad: 2},
		{ProductID: products[1].ID, IngredientID: ingredients[1].ID, Cantidad: 2},
	}
	for i := range base {
		if err := db.Create(&base[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB, password string) error {
	var count int64
	if err := db.Model(&models.StaffUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if password == "" {
		password = "admin123"
	}
	h, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.StaffUser{Username: "admin", PasswordHash: h, Role: "admin"}
	return db.Create(&admin).Error
}
