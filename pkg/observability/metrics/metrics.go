package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	leadRowsSeen        atomic.Int64
	leadRowsDropped     atomic.Int64
	leadRowsInserted    atomic.Int64
	leadRowsUpdated     atomic.Int64
	bookingRowsSeen     atomic.Int64
	bookingRowsDropped  atomic.Int64
	bookingRowsInserted atomic.Int64
	bookingRowsUpdated  atomic.Int64
)

func ObserveLeadImport(seen, dropped, inserted, updated int) {
	leadRowsSeen.Add(int64(seen))
	leadRowsDropped.Add(int64(dropped))
	leadRowsInserted.Add(int64(inserted))
	leadRowsUpdated.Add(int64(updated))
}

func ObserveBookingImport(seen, dropped, inserted, updated int) {
	bookingRowsSeen.Add(int64(seen))
	bookingRowsDropped.Add(int64(dropped))
	bookingRowsInserted.Add(int64(inserted))
	bookingRowsUpdated.Add(int64(updated))
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(w, "# HELP guestflow_import_lead_rows_total Lead rows seen across all imports since start.\n")
	fmt.Fprintf(w, "# TYPE guestflow_import_lead_rows_total counter\n")
	fmt.Fprintf(w, "guestflow_import_lead_rows_total %d\n", leadRowsSeen.Load())

	fmt.Fprintf(w, "# HELP guestflow_import_lead_rows_dropped_total Lead rows dropped by the parser since start.\n")
	fmt.Fprintf(w, "# TYPE guestflow_import_lead_rows_dropped_total counter\n")
	fmt.Fprintf(w, "guestflow_import_lead_rows_dropped_total %d\n", leadRowsDropped.Load())

	fmt.Fprintf(w, "# HELP guestflow_import_lead_rows_inserted_total Lead rows inserted by upserts since start.\n")
	fmt.Fprintf(w, "# TYPE guestflow_import_lead_rows_inserted_total counter\n")
	fmt.Fprintf(w, "guestflow_import_lead_rows_inserted_total %d\n", leadRowsInserted.Load())

	fmt.Fprintf(w, "# HELP guestflow_import_lead_rows_updated_total Lead rows updated by upserts since start.\n")
	fmt.Fprintf(w, "# TYPE guestflow_import_lead_rows_updated_total counter\n")
	fmt.Fprintf(w, "guestflow_import_lead_rows_updated_total %d\n", leadRowsUpdated.Load())

	fmt.Fprintf(w, "# HELP guestflow_import_booking_rows_total Booking rows seen across all imports since start.\n")
	fmt.Fprintf(w, "# TYPE guestflow_import_booking_rows_total counter\n")
	fmt.Fprintf(w, "guestflow_import_booking_rows_total %d\n", bookingRowsSeen.Load())

	fmt.Fprintf(w, "# HELP guestflow_import_booking_rows_dropped_total Booking rows dropped by the parser since start.\n")
	fmt.Fprintf(w, "# TYPE guestflow_import_booking_rows_dropped_total counter\n")
	fmt.Fprintf(w, "guestflow_import_booking_rows_dropped_total %d\n", bookingRowsDropped.Load())

	fmt.Fprintf(w, "# HELP guestflow_import_booking_rows_inserted_total Booking rows inserted by upserts since start.\n")
	fmt.Fprintf(w, "# TYPE guestflow_import_booking_rows_inserted_total counter\n")
	fmt.Fprintf(w, "guestflow_import_booking_rows_inserted_total %d\n", bookingRowsInserted.Load())

	fmt.Fprintf(w, "# HELP guestflow_import_booking_rows_updated_total Booking rows updated by upserts since start.\n")
	fmt.Fprintf(w, "# TYPE guestflow_import_booking_rows_updated_total counter\n")
	fmt.Fprintf(w, "guestflow_import_booking_rows_updated_total %d\n", bookingRowsUpdated.Load())
}
