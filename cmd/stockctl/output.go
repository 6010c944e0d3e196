package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"inventory/pkg/catalog"
)

func writeTable(w io.Writer, products []catalog.Product) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSKU\tPRICE\tSTOCK\t")
	for _, p := range products {
		flag := ""
		if p.LowStock() {
			flag = "LOW"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\t%s\n", p.ID, p.Name, p.SKU, p.Price, p.Stock, flag)
	}
	return tw.Flush()
}

func writeDetail(w io.Writer, p catalog.Product) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	stock := fmt.Sprintf("%d", p.Stock)
	if p.LowStock() {
		stock += " (LOW)"
	}
	rows := [][2]string{
		{"id", p.ID},
		{"name", p.Name},
		{"description", p.Description},
		{"sku", p.SKU},
		{"price", fmt.Sprintf("%.2f", p.Price)},
		{"stock", stock},
		{"image", p.ImageURL},
		{"updated", p.UpdatedAt.Format(time.RFC3339)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}
