/*
Package auth protects the admin API with API keys.

Keys come from the security.authentication section of the configuration:

	security:
	  authentication:
	    sources:
	      - type: header
	        name: Authorization
	        scheme: Bearer
	      - type: header
	        name: X-API-Key
	    keys:
	      - key: ${PLACEMENT_ADMIN_KEY}
	        name: deploy

The middleware plugs into a chi router:

	ring := auth.NewKeyRing(cfg.Security.Authentication.Keys)
	mw := auth.NewMiddleware(ring, auth.SourcesFromConfig(cfg.Security.Authentication.Sources), logger)
	r.With(mw.Handle).Put("/v1/layouts/{id}", putLayout)

With no keys configured the admin API is open.
*/
package auth
