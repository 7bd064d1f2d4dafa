package notify

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// Canal donde se publican los artículos cuyo saldo cambió. Los consumidores
// (dashboards, el módulo de pedidos) se suscriben y refrescan su vista.
const changedChannel = "stock.changed"

// balanceKeyPrefix es el prefijo de la caché de saldos que mantienen los
// lectores; al cambiar el saldo se invalida la clave del artículo.
const balanceKeyPrefix = "stock:balance:"

var _ ledger.Notifier = (*RedisNotifier)(nil)

// RedisNotifier publica cambios de saldo por Redis. Es best-effort: se llama
// después del commit y un fallo solo se registra, nunca se propaga — el
// ledger ya es la fuente de verdad y los lectores pueden releer.
type RedisNotifier struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisNotifier construye el notificador con un cliente ya conectado.
func NewRedisNotifier(client *redis.Client, log *logger.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, log: log}
}

// ItemsChanged publica los IDs afectados (deduplicados, en un solo mensaje
// separado por comas) e invalida la clave de caché de cada uno.
func (n *RedisNotifier) ItemsChanged(ctx context.Context, itemIDs []string) {
	if len(itemIDs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	seen := make(map[string]bool, len(itemIDs))
	unique := make([]string, 0, len(itemIDs))
	keys := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
		keys = append(keys, balanceKeyPrefix+id)
	}

	if err := n.client.Del(ctx, keys...).Err(); err != nil {
		n.log.Warn().Err(err).Strs("items", unique).Msg("no se pudo invalidar caché de saldos")
	}
	if err := n.client.Publish(ctx, changedChannel, strings.Join(unique, ",")).Err(); err != nil {
		n.log.Warn().Err(err).Strs("items", unique).Msg("no se pudo publicar cambio de saldo")
	}
}

// NopNotifier descarta las notificaciones (para entornos sin Redis).
type NopNotifier struct{}

// ItemsChanged no hace nada.
func (NopNotifier) ItemsChanged(context.Context, []string) {}
