// Package version хранит сведения о сборке, которые подставляются через -ldflags:
//
//	go build -ldflags "-X github.com/vladislavdragonenkov/shop/internal/version.version=v1.2.0"
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GetVersion возвращает версию сборки; её же отдаёт /healthz.
func GetVersion() string { return version }

// ClientID — идентификатор сервиса во внешних системах (например, Kafka client.id).
func ClientID() string {
	return "shop-service/" + version
}

// String — строка для стартового лога.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
