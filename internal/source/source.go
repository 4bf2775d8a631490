package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/feedbacklens/backend/internal/pipeline"
	"github.com/feedbacklens/backend/internal/utils"
)

// RowSource supplies raw comment rows for a product page URL. The actual
// extraction is an external collaborator's job; this boundary only defines the
// contract the pipeline consumes.
type RowSource interface {
	FetchComments(ctx context.Context, pageURL string, maxComments int) (pipeline.RawTable, error)
}

var ErrNoComments = errors.New("no comments found for url")

// HTTPSource delegates to a comment-extraction service that returns
// {comments: [{comment, product, customer_id, date}, ...]}.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

type extractedComment struct {
	Comment    string `json:"comment"`
	Product    string `json:"product"`
	CustomerID string `json:"customer_id"`
	Date       string `json:"date"`
}

func (s HTTPSource) FetchComments(ctx context.Context, pageURL string, maxComments int) (pipeline.RawTable, error) {
	if s.Client == nil {
		s.Client = &http.Client{Timeout: 30 * time.Second}
	}

	endpoint := strings.TrimRight(s.BaseURL, "/") + "/comments?url=" + url.QueryEscape(pageURL) + "&limit=" + strconv.Itoa(maxComments)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pipeline.RawTable{}, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return pipeline.RawTable{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return pipeline.RawTable{}, ErrNoComments
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pipeline.RawTable{}, fmt.Errorf("comment source error: %s", resp.Status)
	}

	var body struct {
		Comments []extractedComment `json:"comments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return pipeline.RawTable{}, err
	}
	if len(body.Comments) == 0 {
		return pipeline.RawTable{}, ErrNoComments
	}

	return tableFrom(body.Comments, maxComments), nil
}

// MockSource fabricates deterministic rows from a hash of the URL, so the
// URL-analysis flow works end to end without the extraction service.
type MockSource struct{}

var mockTemplates = []extractedComment{
	{Comment: "Great battery life, lasts two full days", Product: "Unknown"},
	{Comment: "Screen cracked after a week of normal use", Product: "Unknown"},
	{Comment: "It's okay, nothing special for the price", Product: "Unknown"},
	{Comment: "Customer service was slow to respond", Product: "Unknown"},
	{Comment: "Love the design, very comfortable to hold", Product: "Unknown"},
	{Comment: "Delivery took three weeks, packaging was damaged", Product: "Unknown"},
}

func (MockSource) FetchComments(_ context.Context, pageURL string, maxComments int) (pipeline.RawTable, error) {
	h := utils.HashStringToUint64(pageURL)
	n := 3 + int(h%4)
	if maxComments > 0 && n > maxComments {
		n = maxComments
	}

	product := fmt.Sprintf("product-%d", h%1000)
	comments := make([]extractedComment, 0, n)
	for i := 0; i < n; i++ {
		c := mockTemplates[(int(h)+i)%len(mockTemplates)]
		c.Product = product
		c.CustomerID = fmt.Sprintf("cust-%03d", (int(h/7)+i)%500)
		comments = append(comments, c)
	}
	return tableFrom(comments, maxComments), nil
}

func tableFrom(comments []extractedComment, max int) pipeline.RawTable {
	if max > 0 && len(comments) > max {
		comments = comments[:max]
	}
	rows := make([]map[string]string, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, map[string]string{
			"comment":     c.Comment,
			"product":     c.Product,
			"customer_id": c.CustomerID,
			"date":        c.Date,
		})
	}
	return pipeline.RawTable{
		Columns: []string{"comment", "product", "customer_id", "date"},
		Rows:    rows,
	}
}
