package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/iudanet/stockkeeper/internal/models"
)

// formatter выводит результат команды как текст или JSON
type formatter struct {
	w      io.Writer
	format string
}

func (f *formatter) isJSON() bool {
	return f.format == "json"
}

// JSON выводит v с отступами
func (f *formatter) JSON(v any) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// Records выводит позиции таблицей. Позиции, ожидающие отправки, помечены.
func (f *formatter) Records(records []models.Record) error {
	if f.isJSON() {
		if records == nil {
			records = []models.Record{}
		}
		return f.JSON(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(f.w, "No items found.")
		return nil
	}

	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tQTY\tCATEGORY\tSUPPLIER\tWEIGHT\t")
	for _, rec := range records {
		id := rec.ID.String()
		if rec.ID.IsPending() {
			id += " (pending)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t\n",
			id, rec.Name, rec.Status, rec.Quantity, rec.Category, rec.Supplier,
			strconv.FormatFloat(rec.Weight, 'f', -1, 64))
	}
	return tw.Flush()
}

// Record выводит одну позицию подробно
func (f *formatter) Record(rec models.Record) error {
	if f.isJSON() {
		return f.JSON(rec)
	}

	tw := tabwriter.NewWriter(f.w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", rec.ID)
	if rec.ID.IsPending() {
		fmt.Fprintf(tw, "Sync:\t%s\n", "waiting for connection")
	}
	fmt.Fprintf(tw, "Name:\t%s\n", rec.Name)
	fmt.Fprintf(tw, "Status:\t%s\n", rec.Status)
	fmt.Fprintf(tw, "Quantity:\t%d\n", rec.Quantity)
	fmt.Fprintf(tw, "Category:\t%s\n", rec.Category)
	fmt.Fprintf(tw, "Supplier:\t%s\n", rec.Supplier)
	fmt.Fprintf(tw, "Weight:\t%s\n", strconv.FormatFloat(rec.Weight, 'f', -1, 64))
	return tw.Flush()
}
