// Package platform is the SDK for the container-platform controller REST
// API.
//
// A Client is constructed per invocation from a resolved configuration
// profile. Login establishes a session (the controller returns the session
// id in the Location response header, echoed back on every later request in
// the X-BDS-SESSION header). Responses are decoded into generic JSON values;
// list endpoints nest their items under _embedded.<key> and a record's
// canonical id is its _links.self.href.
//
// Resource services (clusters, workers, gateways, tenants, users, roles,
// locks, licenses, catalog entries) share a generic list/get/delete core
// parameterized by a ResourceType schema, and add the operations specific to
// each endpoint.
package platform
