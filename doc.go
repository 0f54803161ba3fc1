// Package docfill fills DOCX and HTML templates from a data context and
// renders them to PDF.
//
// # Quick Start
//
// Create an engine, generate documents, and close when done:
//
//	eng, err := docfill.NewEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	res, err := eng.Generate(ctx, docfill.Request{
//	    Template:   "reporte.docx",
//	    OutputPath: "out/reporte.pdf",
//	    Data: docfill.Context{
//	        "nombre": "Ana",
//	        "actividades_list": []any{
//	            map[string]any{"actividad": "Diagnóstico", "horas": 20},
//	        },
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Outcome, res.Delivery, res.OutputPath)
//
// # Template Paths
//
// The template extension selects the path:
//
//  1. DOCX: anchor rows are injected as row loops into a scratch copy, the
//     copy is rendered, the filled DOCX is written next to the output and
//     converted to PDF with LibreOffice
//  2. HTML: style blocks are stripped, split tokens are recovered, anchor
//     rows are wrapped in for-loops, the page style is injected, and the
//     rendered markup goes to headless Chrome (or the basic renderer)
//
// A template that does not parse still produces a document: tokens are
// substituted one by one and the Result is OutcomeDegraded. When LibreOffice
// is missing or fails, the filled DOCX is delivered instead of the PDF
// (DeliveryNative) and Result.Message says why.
//
// # Anchor Bindings
//
// A binding ties an anchor token to a list in the context:
//
//	docfill.WithBindings(docfill.Binding{
//	    Anchor:   "actividad",
//	    List:     "actividades_list",
//	    Iterator: "a",
//	    Fields:   map[string]string{"horas": "horas", "evidencia": "evidencia"},
//	})
//
// The first table row holding {{ actividad }} is repeated once per list
// item, with {{ horas }} read from the item and {{ loop_index }} numbering
// the rows.
//
// # Images
//
// A context string starting with ImageSentinel ("IMAGE_PATH:") names an
// image file embedded in place of its token.
//
// # Parallel Processing
//
// For batch generation, use EnginePool to manage multiple browser instances:
//
//	pool := docfill.NewEnginePool(4, docfill.WithTemplateDir("templates"))
//	defer pool.Close()
//
//	eng, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(eng)
//	res, err := eng.Generate(ctx, req)
package docfill
