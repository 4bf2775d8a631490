package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/feedbacklens/backend/internal/models"
)

// SchemaError means the input contained zero usable comments. It is the only
// failure that aborts a batch before any external calls are made.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "unusable input: " + e.Reason
}

// RawTable is the row shape handed in by the web/CLI layer. Columns preserves
// the original header order so column sniffing stays deterministic.
type RawTable struct {
	Columns []string
	Rows    []map[string]string
}

// TableFromStrings promotes a plain list of comment texts to a table.
func TableFromStrings(texts []string) RawTable {
	rows := make([]map[string]string, 0, len(texts))
	for _, t := range texts {
		rows = append(rows, map[string]string{"comment": t})
	}
	return RawTable{Columns: []string{"comment"}, Rows: rows}
}

var (
	textAliases     = []string{"comment", "feedback", "review", "comment_text", "review_text", "text", "message", "body"}
	productAliases  = []string{"product", "product_name", "item", "item_name"}
	idAliases       = []string{"id", "comment_id", "review_id"}
	customerAliases = []string{"customer_id", "customer", "user_id"}
	dateAliases     = []string{"date", "created_at", "review_date", "timestamp"}
)

// freeTextMinTokens is the average word count a column must exceed before the
// fallback heuristic treats it as the comment column.
const freeTextMinTokens = 2.0

// Normalize cleans raw rows into CommentRecords. Rows whose resolved text is
// empty after trimming are dropped and counted as skipped. Returns a
// *SchemaError when no text column can be resolved or no usable rows remain.
func Normalize(table RawTable) ([]models.CommentRecord, int, error) {
	if len(table.Rows) == 0 {
		return nil, 0, &SchemaError{Reason: "no rows"}
	}

	textCol, ok := resolveTextColumn(table)
	if !ok {
		return nil, 0, &SchemaError{Reason: "no comment column found"}
	}
	productCol := matchAlias(table.Columns, productAliases)
	idCol := matchAlias(table.Columns, idAliases)
	customerCol := matchAlias(table.Columns, customerAliases)
	dateCol := matchAlias(table.Columns, dateAliases)

	var out []models.CommentRecord
	skipped := 0
	for _, row := range table.Rows {
		text := strings.TrimSpace(rowValue(row, textCol))
		if text == "" {
			skipped++
			continue
		}

		rec := models.CommentRecord{
			Seq:        len(out),
			Text:       text,
			Product:    strings.TrimSpace(rowValue(row, productCol)),
			CustomerID: strings.TrimSpace(rowValue(row, customerCol)),
			Date:       strings.TrimSpace(rowValue(row, dateCol)),
		}
		rec.ID = strings.TrimSpace(rowValue(row, idCol))
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("comment-%04d", len(out)+1)
		}
		if rec.Product == "" {
			rec.Product = "Unknown"
		}
		out = append(out, rec)
	}

	if len(out) == 0 {
		return nil, skipped, &SchemaError{Reason: "all rows empty"}
	}
	return out, skipped, nil
}

// resolveTextColumn tries ranked heuristics in fixed order: known aliases
// first, then the first column whose values look like free text.
func resolveTextColumn(table RawTable) (string, bool) {
	if col := matchAlias(table.Columns, textAliases); col != "" {
		return col, true
	}
	for _, col := range table.Columns {
		if looksLikeFreeText(table.Rows, col) {
			return col, true
		}
	}
	return "", false
}

func matchAlias(columns []string, aliases []string) string {
	for _, alias := range aliases {
		for _, col := range columns {
			if normalizeHeader(col) == alias {
				return col
			}
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\uFEFF", "")
	return strings.ToLower(strings.TrimSpace(h))
}

// looksLikeFreeText reports whether a column's non-empty values are
// predominantly prose: mostly non-numeric, averaging more than
// freeTextMinTokens words.
func looksLikeFreeText(rows []map[string]string, col string) bool {
	nonEmpty := 0
	numeric := 0
	tokens := 0
	for _, row := range rows {
		v := strings.TrimSpace(rowValue(row, col))
		if v == "" {
			continue
		}
		nonEmpty++
		if isNumeric(v) {
			numeric++
		}
		tokens += len(strings.Fields(v))
	}
	if nonEmpty == 0 {
		return false
	}
	if numeric*2 >= nonEmpty {
		return false
	}
	return float64(tokens)/float64(nonEmpty) > freeTextMinTokens
}

func isNumeric(v string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	return err == nil
}

func rowValue(row map[string]string, col string) string {
	if col == "" {
		return ""
	}
	if v, ok := row[col]; ok {
		return v
	}
	// Rows built outside the CSV path may key by normalized header.
	return row[normalizeHeader(col)]
}
