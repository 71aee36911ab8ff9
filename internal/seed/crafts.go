package seed

// DefaultCategory is one entry of the built-in craft catalog.
type DefaultCategory struct {
	Name        string
	Description string
}

// DefaultCategories mirrors the catalog inserted by the seed_categories
// migration.
var DefaultCategories = []DefaultCategory{
	{"Knitting", "Needle-knit garments, accessories and home goods"},
	{"Crochet", "Hook-made amigurumi, blankets and wearables"},
	{"Woodworking", "Furniture, turning, carving and joinery"},
	{"Pottery", "Wheel-thrown and hand-built ceramics"},
	{"Jewelry", "Beadwork, metalsmithing and wirework"},
	{"Sewing", "Garments, quilts and textile projects"},
	{"Painting", "Watercolor, acrylic and oil work"},
	{"Paper Crafts", "Bookbinding, origami, cards and scrapbooking"},
}

type craftVocab struct {
	items     []string
	materials []string
	durations []string
}

var vocab = map[string]craftVocab{
	"Knitting": {
		items:     []string{"cabled sweater", "lace shawl", "ribbed beanie", "fair isle mittens", "sock pair"},
		materials: []string{"merino wool", "alpaca blend", "bamboo needles", "stitch markers", "hand-dyed yarn"},
		durations: []string{"2 weeks", "1 month", "3 evenings", "6 weeks"},
	},
	"Crochet": {
		items:     []string{"granny square blanket", "amigurumi fox", "market bag", "baby cardigan"},
		materials: []string{"cotton yarn", "4mm hook", "safety eyes", "polyfill stuffing"},
		durations: []string{"a weekend", "10 days", "3 weeks"},
	},
	"Woodworking": {
		items:     []string{"walnut cutting board", "shaker side table", "turned bowl", "oak bookshelf", "dovetailed box"},
		materials: []string{"black walnut", "white oak", "hard maple", "danish oil", "hide glue"},
		durations: []string{"4 hours", "2 weekends", "1 month"},
	},
	"Pottery": {
		items:     []string{"celadon vase", "stoneware mug set", "raku bowl", "serving platter"},
		materials: []string{"stoneware clay", "porcelain", "celadon glaze", "iron oxide wash"},
		durations: []string{"2 weeks including firing", "10 days", "3 days"},
	},
	"Jewelry": {
		items:     []string{"silver stacking rings", "beaded necklace", "wire-wrapped pendant", "enamel earrings"},
		materials: []string{"sterling silver", "glass seed beads", "copper wire", "freshwater pearls"},
		durations: []string{"an afternoon", "2 days", "1 week"},
	},
	"Sewing": {
		items:     []string{"linen apron", "patchwork quilt", "wrap dress", "tote bag"},
		materials: []string{"washed linen", "quilting cotton", "interfacing", "brass hardware"},
		durations: []string{"a weekend", "3 weeks", "5 evenings"},
	},
	"Painting": {
		items:     []string{"coastal watercolor", "acrylic still life", "oil portrait", "botanical study"},
		materials: []string{"cold-press paper", "cadmium red", "linen canvas", "sable brushes"},
		durations: []string{"2 hours", "1 week", "a month of sittings"},
	},
	"Paper Crafts": {
		items:     []string{"coptic-bound journal", "origami crane mobile", "pop-up card", "marbled endpapers"},
		materials: []string{"waxed linen thread", "kozo paper", "bookboard", "PVA glue"},
		durations: []string{"an evening", "3 days", "2 weeks"},
	},
}

var priceRanges = []string{"$20-40", "$50-80", "$100-150", "$200+"}

var titlePrefixes = []string{"My first", "Finished", "Commissioned", "Gift:", "Weekend project:", "Another"}
