/*
Package observability turns engine lifecycle hooks into metrics and logs.

Metrics registers Prometheus collectors and exposes them as domain.LifecycleHooks,
Logging emits one structured record per lifecycle event, and Combine fans a single
hook slot out to several hook sets.
*/
package observability
