package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"storefront/commerce/internal/domain"
)

// parseCategoryPage reads a server-rendered category listing. Each category is an
// element carrying data-category-id and data-category-slug, e.g.
//
//	<li data-category-id="3" data-category-slug="kitchen" data-active="true" data-product-count="12">
//	  <img class="category-icon" src="/icons/kitchen.svg">
//	  <span class="category-name">Kitchen</span>
//	  <p class="category-description">Pots and pans</p>
//	</li>
func parseCategoryPage(html string) ([]domain.Category, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	categories := make([]domain.Category, 0)
	doc.Find("[data-category-id]").Each(func(i int, s *goquery.Selection) {
		id, _ := s.Attr("data-category-id")
		slug, _ := s.Attr("data-category-slug")
		if strings.TrimSpace(id) == "" || strings.TrimSpace(slug) == "" {
			log.Debugf("Skipping category element %d without id or slug", i)
			return
		}

		category := domain.Category{
			ID:          strings.TrimSpace(id),
			Slug:        strings.TrimSpace(slug),
			Name:        strings.TrimSpace(s.Find(".category-name").First().Text()),
			Description: strings.TrimSpace(s.Find(".category-description").First().Text()),
			IsActive:    true,
		}

		if active, ok := s.Attr("data-active"); ok {
			category.IsActive = active != "false"
		}
		if count, ok := s.Attr("data-product-count"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(count)); err == nil {
				category.ProductCount = n
			} else {
				log.Warnf("Invalid product count %q for category %s", count, category.Slug)
			}
		}
		if icon, ok := s.Find(".category-icon").First().Attr("src"); ok {
			category.Icon = icon
		}
		if category.Name == "" {
			category.Name = category.Slug
		}

		categories = append(categories, category)
	})

	log.Debugf("Parsed %d categories from HTML", len(categories))
	return categories, nil
}
