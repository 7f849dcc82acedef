// Package engine implements the Data Manager core of an SSD-backed GNN
// accelerator simulator: a two-stage (flash -> page register -> DRAM)
// data-movement pipeline with request coalescing, backpressure-driven
// deferral, and translation layers from graph identifiers to flash
// addresses.
//
// Reading guide, bottom-up:
//
//	event_engine.go   discrete-event scheduling primitive (C2)
//	multifunc.go      ordered coalescing table used by every pipeline stage (C1)
//	chunktag.go       identity key for in-flight/pending table entries
//	flashaddr.go       flash geometry and address validity
//	gstl.go / nftl.go translation layers, block-id / vertex-id -> flash address (C4)
//	flashsim.go       flash + channel timing simulator (C3)
//	compute.go        aggregator/combiner compute-delay queues (C6)
//	graphmeta.go      graph header metadata (C7)
//	datamanager*.go   the Data Manager itself, wiring all of the above (C5)
package engine
