package classify

import (
	"fmt"
	"sort"

	"github.com/Krimson/sportscan/pkg/models"
)

// Имена специализированных анализаторов
const (
	EndpointCoordination = "coordination"
	EndpointRotation     = "rotation"
	EndpointStrength     = "strength"
)

// Router - статическая таблица label -> endpoint
type Router struct {
	table map[string]string
}

// NewRouter копирует таблицу маршрутов
func NewRouter(table map[string]string) *Router {
	copied := make(map[string]string, len(table))
	for label, endpoint := range table {
		copied[label] = endpoint
	}
	return &Router{table: copied}
}

// RoutesFor возвращает таблицу маршрутов профиля. Таблицы профилей не объединяются
func RoutesFor(profile models.Profile) map[string]string {
	if profile == models.ProfileExercise {
		return map[string]string{
			"In_out":       EndpointCoordination,
			"Zig_zag":      EndpointCoordination,
			"360_rotation": EndpointRotation,
			"Squat":        EndpointStrength,
		}
	}
	return map[string]string{}
}

// Route возвращает endpoint для метки. Сравнение точное, без нормализации регистра
func (r *Router) Route(label string) (string, bool) {
	endpoint, ok := r.table[label]
	return endpoint, ok
}

// Endpoints возвращает отсортированный список используемых endpoint'ов
func (r *Router) Endpoints() []string {
	seen := make(map[string]bool)
	var endpoints []string
	for _, endpoint := range r.table {
		if !seen[endpoint] {
			seen[endpoint] = true
			endpoints = append(endpoints, endpoint)
		}
	}
	sort.Strings(endpoints)
	return endpoints
}

// Validate проверяет, что у каждого endpoint'а таблицы есть URL
func (r *Router) Validate(urls map[string]string) error {
	for _, endpoint := range r.Endpoints() {
		if urls[endpoint] == "" {
			return fmt.Errorf("route endpoint %q has no configured url", endpoint)
		}
	}
	return nil
}
