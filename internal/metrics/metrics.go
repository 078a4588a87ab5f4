// Package metrics exposes the process-wide Prometheus collectors. The registry
// is the default one; the router mounts promhttp over it at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrosCreados = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caja_registros_creados_total",
		Help: "Declaraciones de caja registradas.",
	})

	AuditoriasEncoladas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auditorias_encoladas_total",
		Help: "Entradas de auditoría encoladas para escritura asíncrona.",
	})

	AuditoriasFallidas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auditorias_fallidas_total",
		Help: "Entradas de auditoría descartadas tras fallar el encolado y la escritura directa.",
	})

	HTTPSolicitudes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_solicitudes_total",
		Help: "Solicitudes HTTP por método, ruta y estado.",
	}, []string{"metodo", "ruta", "estado"})
)
