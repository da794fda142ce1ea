// Package printing renders order receipts to PDF.
//
// ReceiptPrinter fills the receipt template from an order and hands the page
// to a Renderer. Chrome is the production Renderer: it drives headless
// Chrome over the DevTools protocol, launching a local browser or attaching
// to a remote one.
//
//	chrome := printing.NewChrome(printing.ChromeConfig{NoSandbox: true}, log)
//	defer chrome.Close()
//	pdf, err := printing.NewReceiptPrinter(chrome, "E-Medico").PrintReceipt(ctx, o)
package printing
