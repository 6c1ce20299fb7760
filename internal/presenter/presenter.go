package presenter

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Krimson/sportscan/pkg/models"
)

// Entry - эталонные изображения для одной метки
type Entry struct {
	// Tiers: high | medium | low -> изображения правильного выполнения
	Tiers  map[string][]string `yaml:"tiers" json:"tiers"`
	Faults []string            `yaml:"faults" json:"faults"`
}

// Catalog ключуется меткой первичного классификатора
type Catalog map[string]Entry

type Presenter struct {
	catalog Catalog
}

func New(catalog Catalog) *Presenter {
	if catalog == nil {
		catalog = Catalog{}
	}
	return &Presenter{catalog: catalog}
}

// Present подбирает изображения; неизвестные ключи дают пустые списки
func (p *Presenter) Present(result *models.AnalysisResult) models.Presentation {
	presentation := models.Presentation{
		MediaURL:     result.MediaPath,
		Improvements: []string{},
		Faults:       []string{},
	}

	entry, ok := p.catalog[result.StageOne.Label]
	if !ok || result.Invalid {
		return presentation
	}

	if result.StageTwo != nil && result.StageTwo.Strength != "" {
		tier := strings.ToLower(strings.TrimSpace(result.StageTwo.Strength))
		if images, ok := entry.Tiers[tier]; ok {
			presentation.Improvements = append(presentation.Improvements, images...)
		}
	}
	presentation.Faults = append(presentation.Faults, entry.Faults...)

	return presentation
}

// LoadCatalog читает каталог из YAML файла
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return catalog, nil
}

// CatalogFor возвращает встроенный каталог профиля
func CatalogFor(profile models.Profile) Catalog {
	if profile != models.ProfileExercise {
		return Catalog{}
	}
	return Catalog{
		"In_out": {
			Tiers: map[string][]string{
				"high":   {"/reference/inout/high/inout1.png"},
				"medium": {"/reference/inout/medium/inout2.png", "/reference/inout/medium/inout3.png"},
				"low":    {"/reference/inout/low/inout1.png", "/reference/inout/low/inout2.png", "/reference/inout/low/inout3.png"},
			},
			Faults: []string{"/reference/inout/faults/inoutdont1.png"},
		},
		"Squat": {
			Tiers: map[string][]string{
				"high":   {"/reference/squat/high/squat1.png"},
				"medium": {"/reference/squat/medium/squat1.png", "/reference/squat/medium/squat2.png"},
				"low":    {"/reference/squat/low/squat1.png", "/reference/squat/low/squat2.png", "/reference/squat/low/squat3.png"},
			},
			Faults: []string{"/reference/squat/faults/squatdont1.png", "/reference/squat/faults/squatdont2.png"},
		},
		"360_rotation": {
			Tiers: map[string][]string{
				"high":   {"/reference/360/high/360do1.png"},
				"medium": {"/reference/360/medium/360do1.png", "/reference/360/medium/360do2.png"},
				"low":    {"/reference/360/low/360do1.png", "/reference/360/low/360do2.png", "/reference/360/low/360do3.png"},
			},
			Faults: []string{"/reference/360/faults/360dont1.png", "/reference/360/faults/360dont2.png"},
		},
	}
}
