package shellmenu

// Exported aliases for testing internal functions
// from shellmenu_test package.

// Quote is an alias for quote.
var Quote = quote
