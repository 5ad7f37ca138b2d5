/*
Package moltin talks to the Elastic Path (formerly Moltin) commerce REST API.

Client implements ports.Commerce: catalog reads, the per-user cart, customer creation at
checkout and product image download with a local cache. TokenProvider implements
ports.TokenSource with the client_credentials grant and keeps one cached credential per
instance.

Every request is bearer-authenticated with the credential passed in by the caller and paced
by an optional client-side rate limiter. Non-2xx responses become *domain.BackendError; no
request is retried.
*/
package moltin
