package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
)

func (s *Server) registerNormalizeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "normalizeDate",
		Method:      http.MethodGet,
		Path:        "/api/v1/normalize/date",
		Summary:     "Normalize a date",
		Description: "Shows how an imported date value is read: spreadsheet serial, ISO literal, or free-form calendar text",
		Tags:        []string{"Normalize"},
	}, s.handleNormalizeDate)

	huma.Register(s.api, huma.Operation{
		OperationID: "normalizeTableName",
		Method:      http.MethodGet,
		Path:        "/api/v1/normalize/table",
		Summary:     "Normalize a table name",
		Description: "Converts between a game table name and its display name",
		Tags:        []string{"Normalize"},
	}, s.handleNormalizeTable)
}

// NormalizeDateInput contains the raw date.
type NormalizeDateInput struct {
	Value string `query:"value" doc:"Raw date, e.g. 45567 or 3 October 2025"`
}

// NormalizeDateOutput wraps the normalized date for Huma.
type NormalizeDateOutput struct {
	Body struct {
		Input     string `json:"input" doc:"Value as received"`
		Date      string `json:"date" doc:"YYYY-MM-DD when canonical, otherwise the trimmed input"`
		Kind      string `json:"kind" doc:"empty, serial, iso, calendar, or unparsed"`
		Canonical bool   `json:"canonical" doc:"Whether date is a calendar date"`
	}
}

// NormalizeTableInput contains the name to convert.
type NormalizeTableInput struct {
	Name string `query:"name" minLength:"1" doc:"Table name or display name"`
}

// NormalizeTableOutput wraps both forms of the name for Huma.
type NormalizeTableOutput struct {
	Body struct {
		Table       string `json:"table" doc:"Storage table name"`
		DisplayName string `json:"display_name" doc:"Human readable name"`
	}
}

func (s *Server) handleNormalizeDate(_ context.Context, input *NormalizeDateInput) (*NormalizeDateOutput, error) {
	res := normalize.NormalizeDate(input.Value)

	out := &NormalizeDateOutput{}
	out.Body.Input = input.Value
	out.Body.Date = res.Date
	out.Body.Kind = res.Kind.String()
	out.Body.Canonical = res.Canonical()
	return out, nil
}

func (s *Server) handleNormalizeTable(_ context.Context, input *NormalizeTableInput) (*NormalizeTableOutput, error) {
	table := input.Name
	if !strings.HasSuffix(table, "_games") {
		table = normalize.DisplayNameToTableName(table)
	}

	out := &NormalizeTableOutput{}
	out.Body.Table = table
	out.Body.DisplayName = normalize.TableNameToDisplayName(table)
	return out, nil
}
