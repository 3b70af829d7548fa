package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmaidana/burger_kiosk/internal/mykafka"
	"github.com/dmaidana/burger_kiosk/internal/service/order"
)

type OrderHandler struct {
	Service  *order.Service
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["id_pedido"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *OrderHandler) mapError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, order.ErrValidation), errors.Is(err, order.ErrInvalidState):
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, order.ErrNotFound):
		return fail(c, http.StatusNotFound, err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, fallback, err)
	}
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("parámetro %q inválido", name)
	}
	return uint(v), nil
}

func (h *OrderHandler) Create(c echo.Context) error {
	var req order.CreateInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo de la solicitud inválido", err)
	}

	res, err := h.Service.Create(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err, "Error al crear el pedido")
	}

	h.publish(c, map[string]any{
		"type":      "pedido_creado",
		"id_pedido": res.OrderID,
		"total":     res.Total,
		"productos": res.LinesCreated,
	})

	return okMsg(c, http.StatusCreated, "Pedido creado correctamente", res)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	detail, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, fmt.Sprintf("Error al obtener detalle del pedido %d", id))
	}
	return ok(c, http.StatusOK, detail)
}

func (h *OrderHandler) List(c echo.Context) error {
	var f order.ListFilter

	if v := c.QueryParam("cliente"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return fail(c, http.StatusBadRequest, "parámetro cliente inválido", nil)
		}
		f.ClientID = uint(id)
	}
	f.Status = c.QueryParam("estado")
	f.PaymentMethod = c.QueryParam("metodo_pago")

	if v := c.QueryParam("desde"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "parámetro desde inválido, use YYYY-MM-DD", err)
		}
		f.From = &t
	}
	if v := c.QueryParam("hasta"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "parámetro hasta inválido, use YYYY-MM-DD", err)
		}
		f.To = &t
	}

	items, err := h.Service.List(c.Request().Context(), f)
	if err != nil {
		return h.mapError(c, err, "Error al obtener pedidos")
	}
	return ok(c, http.StatusOK, items)
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func (h *OrderHandler) SetStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	var req struct {
		Estado string `json:"estado"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo de la solicitud inválido", err)
	}

	res, err := h.Service.SetStatus(c.Request().Context(), id, req.Estado)
	if err != nil {
		return h.mapError(c, err, fmt.Sprintf("Error al actualizar estado del pedido %d", id))
	}

	h.publish(c, map[string]any{
		"type":      "estado_cambiado",
		"id_pedido": id,
		"estado":    res.Estado,
	})

	return okMsg(c, http.StatusOK, fmt.Sprintf("Estado del pedido actualizado a %q", res.Estado), res)
}

func (h *OrderHandler) AddLines(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	var req struct {
		Lines []order.LineInput `json:"productos"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo de la solicitud inválido", err)
	}

	res, err := h.Service.AddLines(c.Request().Context(), id, req.Lines)
	if err != nil {
		return h.mapError(c, err, fmt.Sprintf("Error al agregar productos al pedido %d", id))
	}

	h.publish(c, map[string]any{
		"type":      "productos_agregados",
		"id_pedido": id,
		"cantidad":  len(res.Added),
	})

	return okMsg(c, http.StatusOK, "Productos agregados correctamente al pedido", res)
}

func (h *OrderHandler) RemoveLine(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}
	lineID, err := parseIDParam(c, "idLinea")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	res, err := h.Service.RemoveLine(c.Request().Context(), id, lineID)
	if err != nil {
		return h.mapError(c, err, "Error al eliminar producto del pedido")
	}

	h.publish(c, map[string]any{
		"type":               "producto_eliminado_de_pedido",
		"id_pedido":          id,
		"id_pedido_producto": lineID,
	})

	return okMsg(c, http.StatusOK, "Producto eliminado correctamente del pedido", res)
}

func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	res, err := h.Service.Delete(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, fmt.Sprintf("Error al eliminar el pedido %d", id))
	}

	h.publish(c, map[string]any{
		"type":      "pedido_eliminado",
		"id_pedido": id,
	})

	return okMsg(c, http.StatusOK, fmt.Sprintf("Pedido con ID %d eliminado correctamente", id), res)
}

func (h *OrderHandler) Summary(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	res, err := h.Service.Summary(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, fmt.Sprintf("Error al obtener resumen del pedido %d", id))
	}
	return ok(c, http.StatusOK, res)
}

func (h *OrderHandler) Stats(c echo.Context) error {
	res, err := h.Service.Stats(c.Request().Context())
	if err != nil {
		return h.mapError(c, err, "Error al obtener estadísticas de pedidos")
	}
	return ok(c, http.StatusOK, res)
}
