// Package shopify pages active products out of the Shopify Admin
// GraphQL API for catalog ingestion.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	apiVersion     = "2024-04"
	defaultTimeout = 30 * time.Second
)

const productsQuery = `
  query GetProducts($first: Int!, $after: String) {
    products(first: $first, after: $after, query:"status:active") {
      edges {
        cursor
        node {
          id
          handle
          title
          bodyHtml
          vendor
          productType
          tags
          onlineStoreUrl
          featuredImage {
            url(transform: {maxWidth: 200, maxHeight: 200, preferredContentType: WEBP})
            altText
          }
          priceRangeV2 {
            minVariantPrice {
              amount
              currencyCode
            }
            maxVariantPrice {
              amount
              currencyCode
            }
          }
        }
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
`

// Image is a product image reference.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

// Price is a money amount with currency.
type Price struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// ProductNode is one product as returned by the Admin API.
type ProductNode struct {
	ID             string   `json:"id"`
	Handle         string   `json:"handle"`
	Title          string   `json:"title"`
	BodyHTML       string   `json:"bodyHtml"`
	Vendor         string   `json:"vendor"`
	ProductType    string   `json:"productType"`
	Tags           []string `json:"tags"`
	OnlineStoreURL string   `json:"onlineStoreUrl"`
	FeaturedImage  *Image   `json:"featuredImage"`
	PriceRangeV2   struct {
		MinVariantPrice Price `json:"minVariantPrice"`
		MaxVariantPrice Price `json:"maxVariantPrice"`
	} `json:"priceRangeV2"`
}

// FetchResult is one page of products plus the cursor for the next page
// (empty when there are no more pages).
type FetchResult struct {
	Products       []ProductNode
	NextPageCursor string
}

type graphQLResponse struct {
	Data *struct {
		Products struct {
			Edges []struct {
				Node   ProductNode `json:"node"`
				Cursor string      `json:"cursor"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"products"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client talks to one store's Admin GraphQL endpoint.
type Client struct {
	endpoint    string
	accessToken string
	storeDomain string
	httpClient  *http.Client
}

// NewClientFromEnv reads SHOPIFY_STORE_NAME and
// SHOPIFY_ADMIN_ACCESS_TOKEN.
func NewClientFromEnv() (*Client, error) {
	storeDomain := os.Getenv("SHOPIFY_STORE_NAME")
	accessToken := os.Getenv("SHOPIFY_ADMIN_ACCESS_TOKEN")
	if storeDomain == "" || accessToken == "" {
		return nil, fmt.Errorf("shopify API credentials are not configured")
	}

	return &Client{
		endpoint:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", storeDomain, apiVersion),
		accessToken: accessToken,
		storeDomain: storeDomain,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

// StoreDomain returns the configured store domain, used to synthesise
// product URLs for products without an online store URL.
func (c *Client) StoreDomain() string {
	return c.storeDomain
}

// FetchProducts returns one page of active products starting after the
// given cursor. Pass an empty cursor for the first page.
func (c *Client) FetchProducts(ctx context.Context, cursor string, limit int) (*FetchResult, error) {
	variables := map[string]any{"first": limit}
	if cursor != "" {
		variables["after"] = cursor
	}

	body, err := json.Marshal(map[string]any{
		"query":     productsQuery,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify API request failed with status %d: %s", resp.StatusCode, truncate(respBody, 500))
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("shopify GraphQL error: %s", parsed.Errors[0].Message)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("invalid response structure from shopify")
	}

	edges := parsed.Data.Products.Edges
	result := &FetchResult{Products: make([]ProductNode, 0, len(edges))}
	for _, edge := range edges {
		result.Products = append(result.Products, edge.Node)
	}
	if parsed.Data.Products.PageInfo.HasNextPage {
		result.NextPageCursor = parsed.Data.Products.PageInfo.EndCursor
	}
	return result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
