package analysis

import (
	"fmt"
	"sync"

	"github.com/Krimson/sportscan/pkg/models"
)

// Guard допускает не более одного действия на сессию одновременно.
// Повторная попытка во время выполнения получает ErrBusy, без ожидания
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]string
}

func NewGuard() *Guard {
	return &Guard{inFlight: make(map[string]string)}
}

// Acquire занимает сессию под действие action и возвращает функцию освобождения
func (g *Guard) Acquire(sessionID, action string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if current, busy := g.inFlight[sessionID]; busy {
		return nil, fmt.Errorf("%w: %s is running for session %s", models.ErrBusy, current, sessionID)
	}
	g.inFlight[sessionID] = action

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, sessionID)
			g.mu.Unlock()
		})
	}, nil
}

// InFlight возвращает число занятых сессий
func (g *Guard) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight)
}
