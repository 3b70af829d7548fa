package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/dmaidana/burger_kiosk/internal/config"
	"github.com/dmaidana/burger_kiosk/internal/models"
)

const ProductIndex = "productos"

func NewClient(cfg *config.Config, log *slog.Logger) (*elasticsearch.Client, error) {
	log.Info("connecting to elasticsearch", "url", cfg.ES_URL)

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}

	log.Info("connected to elasticsearch")
	return client, nil
}

// IndexProducts writes the current menu into the product index so the
// kiosk search stays in sync with the catalog.
func IndexProducts(ctx context.Context, client *elasticsearch.Client, products []models.Product) error {
	for _, p := range products {
		if err := IndexProduct(ctx, client, p); err != nil {
			return err
		}
	}
	return nil
}

func IndexProduct(ctx context.Context, client *elasticsearch.Client, p models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}

	res, err := client.Index(
		ProductIndex,
		bytes.NewReader(data),
		client.Index.WithContext(ctx),
		client.Index.WithDocumentID(fmt.Sprint(p.ID)),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index product %d: %s: %s", p.ID, res.Status(), body)
	}
	return nil
}
