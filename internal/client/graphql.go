package client

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"storefront/commerce/internal/domain"
)

const categoriesQuery = `query Categories {
  categories {
    id
    name
    slug
    isActive
    productCount
    description
    icon
    createdAt
    updatedAt
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type categoryNode struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	IsActive     bool       `json:"isActive"`
	ProductCount int        `json:"productCount"`
	Description  string     `json:"description"`
	Icon         string     `json:"icon"`
	CreatedAt    *time.Time `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
}

type categoriesResponse struct {
	Data struct {
		Categories []categoryNode `json:"categories"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func decodeGraphQLCategories(body []byte) ([]domain.Category, error) {
	var resp categoriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		return nil, errors.New("graphql: " + strings.Join(messages, "; "))
	}

	categories := make([]domain.Category, 0, len(resp.Data.Categories))
	for _, node := range resp.Data.Categories {
		categories = append(categories, domain.Category{
			ID:           node.ID,
			Name:         node.Name,
			Slug:         node.Slug,
			IsActive:     node.IsActive,
			ProductCount: node.ProductCount,
			Description:  node.Description,
			Icon:         node.Icon,
			CreatedAt:    node.CreatedAt,
			UpdatedAt:    node.UpdatedAt,
		})
	}
	return categories, nil
}
