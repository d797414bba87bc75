package cli

import (
	"fmt"
	"io"
	"sort"
	"storefront/internal/model"
)

func writeProducts(w io.Writer, products []*model.Product, purchased map[string]bool) error {
	for _, p := range products {
		status := "buy"
		if purchased[p.ID] {
			status = "owned"
		}
		_, err := fmt.Fprintf(w, "%-20s %-50s %8s %8s  %s\n",
			p.ID, p.Name, "$"+p.Price.StringFixed(2), "$"+p.OriginalPrice.StringFixed(2), status)
		if err != nil {
			return err
		}
	}
	return nil
}

func writePurchased(w io.Writer, purchased map[string]bool) error {
	ids := make([]string, 0, len(purchased))
	for id, ok := range purchased {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if len(ids) == 0 {
		_, err := fmt.Fprintln(w, "No purchases yet")
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}
