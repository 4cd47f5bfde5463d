// Package io reads and writes calculation reports.
//
// # JSON Format
//
// A report is a JSON object whose headline fields describe the final focus
// and whose full_history array holds one entry per lens:
//
//	{
//	  "energy": 10300,
//	  "final_pos": 64.0028,
//	  "L2": 2.687,
//	  "M_total": 0.0497,
//	  "T": 0.655,
//	  "G": 39364.6,
//	  "size_x": 4.26e-06,
//	  "size_y": 1.45e-06,
//	  "full_history": [
//	    {"index": 1, "tf_name": "TF1", "position": 27.075, "L1": 27.075, "L2": -41.48, ...}
//	  ]
//	}
//
// Lengths are in metres, transmissions are fractions. Values that are not
// finite, such as the image distance of a lens at its focal point, are
// written as the strings "Infinity", "-Infinity" and "NaN".
//
// # Import
//
// Use [ImportJSON] to read a report from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	rep, err := io.ImportJSON("report.json")
//
// # Export
//
// Use [ExportJSON] or [WriteJSON] for the full report, and [WriteCSV] for
// the lens history as a spreadsheet-friendly table:
//
//	err := io.WriteCSV(os.Stdout, rep.History, report.DefaultColumns())
package io
