// Package hastic is the client library a visualization panel uses to talk
// to a remote Hastic anomaly-detection server.
//
// The central type is [Service]: it dispatches typed requests for every
// server operation (analytic unit CRUD, panel template import/export,
// segment synchronization, detection triggering), tracks endpoint
// connectivity with alerts deduplicated across panel instances, and hands
// out cancellable polling sequences for long-running status and detection
// queries.
//
// A minimal consumer looks like:
//
//	svc, err := hastic.New("http://localhost:8000")
//	if err != nil {
//	    slog.Error("failed to create hastic client", "error", err)
//	    os.Exit(1)
//	}
//
//	if !svc.CheckAvailability(ctx) {
//	    return
//	}
//
//	seq, err := svc.PollStatus(unitID, time.Second)
//	if err != nil {
//	    return
//	}
//	defer seq.Stop()
//	for {
//	    status, err := seq.Next(ctx)
//	    ...
//	}
//
// User-visible alerts (server connected, no connection, unsupported
// version) flow through the [Notifier] interface, so the host application
// can bridge them onto its own notification bus. Alerts for one endpoint
// are deduplicated through a [registry.Store] shared by every Service
// pointed at that endpoint.
package hastic
