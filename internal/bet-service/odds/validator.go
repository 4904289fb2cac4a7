package odds

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Validator confere a cotação enviada pelo cliente contra a cotação
// corrente publicada pelo provedor no cache. Sem chave no cache o
// validador não tem opinião (a integração com o provedor é externa).
type Validator struct {
	Rdb       *redis.Client
	Tolerance float64 // desvio relativo aceito, ex: 0.05
}

func NewValidator(r *redis.Client, tolerance float64) *Validator {
	if tolerance <= 0 {
		tolerance = 0.05
	}
	return &Validator{Rdb: r, Tolerance: tolerance}
}

// Espera chave "odds:{eventID}:{market}:{outcomeKey}" => valor string com a cotação, ex: "1.85"
func (v *Validator) CurrentOdd(ctx context.Context, eventID, market, outcomeKey string) (float64, bool, error) {
	key := fmt.Sprintf("odds:%s:%s:%s", eventID, market, outcomeKey)
	val, err := v.Rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, nil
	}
	return f, true, nil
}

// CheckDrift retorna a cotação corrente e se o price enviado está fora
// da tolerância. Sem cotação no cache, nunca acusa desvio.
func (v *Validator) CheckDrift(ctx context.Context, eventID, market, outcomeKey string, price float64) (current float64, drifted bool, err error) {
	cur, ok, err := v.CurrentOdd(ctx, eventID, market, outcomeKey)
	if err != nil || !ok {
		return 0, false, err
	}
	diff := price - cur
	if diff < 0 {
		diff = -diff
	}
	return cur, diff > cur*v.Tolerance, nil
}
