package order

import (
	"context"
	"log/slog"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmaidana/burger_kiosk/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	err = db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Ingredient{},
		&models.ProductIngredient{},
		&models.Client{},
		&models.Coupon{},
		&models.OrderStatus{},
		&models.PaymentMethod{},
		&models.Order{},
		&models.OrderLine{},
		&models.OrderLineIngredient{},
		&models.Payment{},
		&models.StaffUser{},
	)
	if err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func seedKiosk(t *testing.T, db *gorm.DB) {
	for _, name := range []string{"pendiente", "elaboracion", "completado", "entregado", "cancelado"} {
		require.NoError(t, db.Create(&models.OrderStatus{Nombre: name}).Error)
	}
	for _, name := range []string{"efectivo", "tarjeta", "qr"} {
		require.NoError(t, db.Create(&models.PaymentMethod{Nombre: name}).Error)
	}
	clients := []models.Client{
		{ID: 1, Nombre: "Ana García", DNI: "30111222"},
		{ID: 2, Nombre: "Luis Pérez", DNI: "28999888"},
		{ID: 5, Nombre: "Invitado", DNI: "0"},
	}
	for _, c := range clients {
		require.NoError(t, db.Create(&c).Error)
	}

	require.NoError(t, db.Create(&models.Category{ID: 1, Nombre: "Hamburguesas"}).Error)
	products := []models.Product{
		{ID: 1, Nombre: "Clásica", PrecioBase: 1500, CategoryID: 1, Disponible: true},
		{ID: 2, Nombre: "Doble", PrecioBase: 2500, CategoryID: 1, Disponible: true},
		{ID: 3, Nombre: "Retirada", PrecioBase: 1000, CategoryID: 1, Disponible: false},
	}
	for _, p := range products {
		require.NoError(t, db.Create(&p).Error)
	}
	ingredients := []models.Ingredient{
		{ID: 1, Nombre: "Cheddar", Precio: 200, EsExtra: true},
		{ID: 2, Nombre: "Bacon", Precio: 350, EsExtra: true},
		{ID: 3, Nombre: "Lechuga", Precio: 50},
	}
	for _, i := range ingredients {
		require.NoError(t, db.Create(&i).Error)
	}

	require.NoError(t, db.Create(&models.Coupon{ID: 1, ClientID: 1, Codigo: "BIENVENIDA10", Descuento: 10}).Error)
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db := initTestDB(t)
	seedKiosk(t, db)
	return NewService(db, slog.Default()), db
}

func TestCreateSingleLine(t *testing.T) {
	svc, db := newTestService(t)

	res, err := svc.Create(context.Background(), CreateInput{
		Lines:         []LineInput{{ProductID: 1}},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.LinesCreated)
	require.Equal(t, 1500.0, res.Total)
	require.Equal(t, uint(GuestClientID), res.ClientID)

	var ord models.Order
	require.NoError(t, db.First(&ord, res.OrderID).Error)
	require.Equal(t, 1500.0, ord.Total)

	var status models.OrderStatus
	require.NoError(t, db.First(&status, ord.StatusID).Error)
	require.Equal(t, StatusPending, status.Nombre)

	var payment models.Payment
	require.NoError(t, db.Where("order_id = ?", res.OrderID).First(&payment).Error)
	require.Equal(t, 1500.0, payment.Monto)
}

func TestCreateWithExtrasAndQuantity(t *testing.T) {
	svc, db := newTestService(t)

	res, err := svc.Create(context.Background(), CreateInput{
		Lines: []LineInput{
			{
				ProductID: 2,
				Cantidad:  2,
				Ingredientes: []IngredientInput{
					{IngredientID: 1, Cantidad: 2, EsExtra: true},
					{IngredientID: 3, Cantidad: 1, EsExtra: false},
				},
			},
			{ProductID: 1},
		},
		PaymentMethod: "tarjeta",
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.LinesCreated)

	// (2500 + 2*200) * 2 + 1500; the non-extra customization is free
	require.Equal(t, 7300.0, res.Total)

	var lines []models.OrderLine
	require.NoError(t, db.Where("order_id = ?", res.OrderID).Order("id").Find(&lines).Error)
	require.Len(t, lines, 2)
	require.Equal(t, 5800.0, lines[0].Subtotal)

	var customizations []models.OrderLineIngredient
	require.NoError(t, db.Where("order_line_id = ?", lines[0].ID).Find(&customizations).Error)
	require.Len(t, customizations, 2)
}

func TestCreateIgnoresClientPriceHint(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Create(context.Background(), CreateInput{
		Lines:         []LineInput{{ProductID: 1, Subtotal: "$1,00"}},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)
	require.Equal(t, 1500.0, res.Total)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{PaymentMethod: "efectivo"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Lines: []LineInput{{ProductID: 1}}})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{
		Lines:         []LineInput{{ProductID: 1}},
		PaymentMethod: "cripto",
	})
	require.ErrorIs(t, err, ErrValidation)

	badClient := uint(99)
	_, err = svc.Create(ctx, CreateInput{
		Lines:         []LineInput{{ProductID: 1}},
		PaymentMethod: "efectivo",
		ClientID:      &badClient,
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{
		Lines:         []LineInput{{ProductID: 99}},
		PaymentMethod: "efectivo",
	})
	require.ErrorIs(t, err, ErrNotFound)

	// unavailable products cannot be ordered
	_, err = svc.Create(ctx, CreateInput{
		Lines:         []LineInput{{ProductID: 3}},
		PaymentMethod: "efectivo",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRollsBackOnBadLine(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		Lines:         []LineInput{{ProductID: 1}, {ProductID: 99}},
		PaymentMethod: "efectivo",
	})
	require.ErrorIs(t, err, ErrNotFound)

	var orders, lines, payments int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderLine{}).Count(&lines).Error)
	require.NoError(t, db.Model(&models.Payment{}).Count(&payments).Error)
	require.Zero(t, orders)
	require.Zero(t, lines)
	require.Zero(t, payments)
}

func TestCreateStampsCoupon(t *testing.T) {
	svc, db := newTestService(t)
	clientID := uint(1)

	res, err := svc.Create(context.Background(), CreateInput{
		Lines:         []LineInput{{ProductID: 1}},
		PaymentMethod: "qr",
		ClientID:      &clientID,
		CouponCode:    "BIENVENIDA10",
	})
	require.NoError(t, err)

	var coupon models.Coupon
	require.NoError(t, db.First(&coupon, 1).Error)
	require.NotNil(t, coupon.OrderID)
	require.Equal(t, res.OrderID, *coupon.OrderID)

	// already stamped
	_, err = svc.Create(context.Background(), CreateInput{
		Lines:         []LineInput{{ProductID: 1}},
		PaymentMethod: "qr",
		ClientID:      &clientID,
		CouponCode:    "BIENVENIDA10",
	})
	require.ErrorIs(t, err, ErrValidation)

	// coupon belongs to another client
	otherID := uint(2)
	_, err = svc.Create(context.Background(), CreateInput{
		Lines:         []LineInput{{ProductID: 1}},
		PaymentMethod: "qr",
		ClientID:      &otherID,
		CouponCode:    "BIENVENIDA10",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestAddLinesRecomputesTotal(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Lines:         []LineInput{{ProductID: 1}},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)

	res, err := svc.AddLines(ctx, created.OrderID, []LineInput{
		{ProductID: 2, Ingredientes: []IngredientInput{{IngredientID: 2, EsExtra: true}}},
	})
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	require.Equal(t, 2850.0, res.TotalAdicional)
	require.Equal(t, 4350.0, res.Order.Total)

	var ord models.Order
	require.NoError(t, db.First(&ord, created.OrderID).Error)
	require.Equal(t, 4350.0, ord.Total)
}

func TestRemoveLine(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Lines: []LineInput{
			{ProductID: 1},
			{ProductID: 2, Ingredientes: []IngredientInput{{IngredientID: 1, EsExtra: true}}},
		},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)

	var lines []models.OrderLine
	require.NoError(t, db.Where("order_id = ?", created.OrderID).Order("id").Find(&lines).Error)
	require.Len(t, lines, 2)

	res, err := svc.RemoveLine(ctx, created.OrderID, lines[1].ID)
	require.NoError(t, err)
	require.Equal(t, 2700.0, res.SubtotalEliminado)
	require.Equal(t, 1500.0, res.Order.Total)

	var customizations int64
	require.NoError(t, db.Model(&models.OrderLineIngredient{}).
		Where("order_line_id = ?", lines[1].ID).Count(&customizations).Error)
	require.Zero(t, customizations)

	_, err = svc.RemoveLine(ctx, created.OrderID, lines[1].ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMutationGuardOnDeliveredOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Lines:         []LineInput{{ProductID: 1}},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)

	var lines []models.OrderLine
	require.NoError(t, svc.DB.Where("order_id = ?", created.OrderID).Find(&lines).Error)

	_, err = svc.SetStatus(ctx, created.OrderID, StatusDelivered)
	require.NoError(t, err)

	_, err = svc.AddLines(ctx, created.OrderID, []LineInput{{ProductID: 2}})
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.RemoveLine(ctx, created.OrderID, lines[0].ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSetStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Lines:         []LineInput{{ProductID: 1}},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)

	res, err := svc.SetStatus(ctx, created.OrderID, StatusPreparing)
	require.NoError(t, err)
	require.Equal(t, StatusPreparing, res.Estado)

	// setting the same status again is a no-op, not an error
	res, err = svc.SetStatus(ctx, created.OrderID, StatusPreparing)
	require.NoError(t, err)
	require.Equal(t, StatusPreparing, res.Estado)

	_, err = svc.SetStatus(ctx, created.OrderID, "cancelado")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetStatus(ctx, created.OrderID, "enviado")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetStatus(ctx, 999, StatusPreparing)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	clientID := uint(1)

	created, err := svc.Create(ctx, CreateInput{
		Lines: []LineInput{
			{ProductID: 1, Ingredientes: []IngredientInput{{IngredientID: 1, EsExtra: true}}},
			{ProductID: 2},
		},
		PaymentMethod: "efectivo",
		ClientID:      &clientID,
		CouponCode:    "BIENVENIDA10",
	})
	require.NoError(t, err)

	res, err := svc.Delete(ctx, created.OrderID)
	require.NoError(t, err)
	require.Equal(t, created.OrderID, res.OrderID)
	require.Equal(t, 2, res.LinesDeleted)

	var orders, lines, customizations, payments int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderLine{}).Count(&lines).Error)
	require.NoError(t, db.Model(&models.OrderLineIngredient{}).Count(&customizations).Error)
	require.NoError(t, db.Model(&models.Payment{}).Count(&payments).Error)
	require.Zero(t, orders)
	require.Zero(t, lines)
	require.Zero(t, customizations)
	require.Zero(t, payments)

	// the coupon survives the order and becomes redeemable again
	var coupon models.Coupon
	require.NoError(t, db.First(&coupon, 1).Error)
	require.Nil(t, coupon.OrderID)

	_, err = svc.Delete(ctx, created.OrderID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTotalMatchesLineSum(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Lines: []LineInput{
			{ProductID: 1, Cantidad: 3},
			{ProductID: 2},
			{ProductID: 1, Ingredientes: []IngredientInput{{IngredientID: 2, Cantidad: 2, EsExtra: true}}},
		},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)

	var sum float64
	require.NoError(t, db.Model(&models.OrderLine{}).
		Where("order_id = ?", created.OrderID).
		Select("COALESCE(SUM(subtotal), 0)").Scan(&sum).Error)
	require.Equal(t, sum, created.Total)
}
