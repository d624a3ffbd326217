package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Grant-domain Prometheus metrics. Defined in a standalone package to avoid
// import cycles between the controllers and the HTTP metrics plumbing.

var (
	AuthorizationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grantkit_authorizations_total",
		Help: "Authorization endpoint decisions by flow and outcome",
	}, []string{"flow", "outcome"}) // outcome: success | the protocol error code

	TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grantkit_tokens_issued_total",
		Help: "Access tokens issued by grant type",
	}, []string{"grant_type"})

	IDTokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grantkit_id_tokens_issued_total",
		Help: "ID tokens attached to responses",
	})
)

// RegisterGrants registers the grant metrics on the given registry (or the
// default when nil). Double registration is tolerated.
func RegisterGrants(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{AuthorizationsTotal, TokensIssuedTotal, IDTokensIssuedTotal} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
