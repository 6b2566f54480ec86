package resource

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/shyamgroup/backoffice/backend"
)

var webpOnly = []string{".webp"}

// StockOptions are the stock exchange filing categories.
var StockOptions = []string{
	"Shareholding Pattern",
	"Corporate Governance Report",
	"Reconciliation Share Capital Audit Report",
	"Investors Grievances Report",
	"Integrated Financials",
	"Integrated Governance",
	"Regulation 74(5)",
	"Regulation 40(9)",
	"Regulation 7(3)",
}

var CorporateOptions = []string{
	"Newspaper Publication",
	"Press Release",
	"Notices",
	"Regulation 30 Disclosures",
}

var OtherOptions = []string{
	"Other Compliances",
	"KMP Contact Details",
	"Investor Relations Contact",
}

// InquiryStatuses is the workflow of contact form inquiries.
var InquiryStatuses = []string{"Pending", "In Progress", "Resolved", "Rejected"}

// contactVariant is the form of the contact options of "other": a title and
// date plus a nested contactInfo object, posted as JSON without a file.
var contactVariant = Variant{
	Encoding: EncodeJSON,
	Fields: []Field{
		{Name: "name", Label: "Title", Kind: KindText, Required: true},
		{Name: "date", Label: "Date", Kind: KindDate, Required: true},
		{Name: "contactInfo.name", Label: "Contact name", Kind: KindText},
		{Name: "contactInfo.designation", Label: "Designation", Kind: KindText},
		{Name: "contactInfo.office", Label: "Office", Kind: KindText},
		{Name: "contactInfo.company", Label: "Company", Kind: KindText},
		{Name: "contactInfo.address", Label: "Address", Kind: KindTextArea},
		{Name: "contactInfo.phone", Label: "Phone", Kind: KindText},
		{Name: "contactInfo.email", Label: "Email", Kind: KindText},
	},
}

var InvestorInformationOptions = []string{
	"Credit Rating",
	"Postal Ballot",
	"AGM",
}

// FileLink renders a field holding a file URL as a "View" link.
func FileLink(key string) func(backend.Record) template.HTML {
	return func(rec backend.Record) template.HTML {
		href := rec.String(key)
		if href == "" || !safeHref(href) {
			return template.HTML(template.HTMLEscapeString(href))
		}
		return template.HTML(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">View</a>`,
			template.HTMLEscapeString(href)))
	}
}

// DateOnly renders the date part of an ISO timestamp.
func DateOnly(key string) func(backend.Record) template.HTML {
	return func(rec backend.Record) template.HTML {
		v := rec.String(key)
		if len(v) > 10 {
			v = v[:10]
		}
		return template.HTML(template.HTMLEscapeString(v))
	}
}

// WithDefault renders key, or def when the record has no value.
func WithDefault(key, def string) func(backend.Record) template.HTML {
	return func(rec backend.Record) template.HTML {
		v := rec.String(key)
		if v == "" {
			v = def
		}
		return template.HTML(template.HTMLEscapeString(v))
	}
}

func safeHref(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(s, "/")
}

// filing builds the common name/date/file shape shared by most investor
// relations resources.
func filing(name, title, singular, base string, ep Endpoints, nameKey, dateKey, fileKey string) *Schema {
	ep.Base = base
	return &Schema{
		Name:      name,
		Title:     title,
		Singular:  singular,
		Endpoints: ep,
		Fields: []Field{
			{Name: nameKey, Label: "Name", Kind: KindText, Required: true},
			{Name: dateKey, Label: "Date", Kind: KindDate, Required: true},
			{Name: fileKey, Label: "File", Kind: KindFile, Required: true},
		},
		Columns: []Column{
			{Key: nameKey, Label: "Name"},
			{Key: dateKey, Label: "Date", Render: DateOnly(dateKey)},
			{Key: fileKey, Label: "File", Render: FileLink(fileKey)},
		},
	}
}

func withVariants(s *Schema, variants map[string]Variant) *Schema {
	s.Variants = variants
	return s
}

func scoped(s *Schema, options []string) *Schema {
	s.Options = options
	s.OptionField = "option"
	return s
}

// Catalog returns every resource the console manages, in menu order.
func Catalog() []*Schema {
	return []*Schema{
		{
			Name:     "disclosures",
			Title:    "Disclosures",
			Singular: "Disclosure",
			Endpoints: Endpoints{
				Base:   "/disclosure",
				List:   "/get_disclosure",
				Create: "/create_disclosure",
				Update: "/update_disclosure/{id}",
				Delete: "/delete",
			},
			Fields: []Field{
				{Name: "name", Label: "Name", Kind: KindText, Required: true},
				{Name: "date", Label: "Date", Kind: KindDate, Required: true},
				{Name: "file", Label: "File", Kind: KindFile, Required: true, Accept: webpOnly},
			},
			Columns: []Column{
				{Key: "name", Label: "Name"},
				{Key: "date", Label: "Date", Render: DateOnly("date")},
				{Key: "file", Label: "File", Render: FileLink("file")},
			},
		},
		{
			Name:     "awards",
			Title:    "Awards",
			Singular: "Award",
			Endpoints: Endpoints{
				Base:   "/award",
				List:   "/get_awards",
				Create: "/create_awards",
				Update: "/update_awards/{id}",
				Delete: "/delete",
			},
			Fields: []Field{
				{Name: "category", Label: "Category", Kind: KindText, Required: true},
				{Name: "title", Label: "Title", Kind: KindText, Required: true},
				{Name: "description", Label: "Description", Kind: KindTextArea, Required: true},
				{Name: "image", Label: "Image", Kind: KindFile, Required: true, Accept: webpOnly},
			},
			Columns: []Column{
				{Key: "category", Label: "Category"},
				{Key: "title", Label: "Title"},
				{Key: "image", Label: "Image", Render: FileLink("image")},
			},
		},
		{
			Name:     "blogs",
			Title:    "Blogs",
			Singular: "Blog",
			Endpoints: Endpoints{
				Base:   "/blog",
				List:   "/get_blog",
				Create: "/create_blog",
				Update: "/update_blog/{id}",
				Delete: "/delete",
			},
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText, Required: true},
				{Name: "date", Label: "Date", Kind: KindDate, Required: true},
				{Name: "link", Label: "Link", Kind: KindText, Required: true},
				{Name: "excerpt", Label: "Excerpt", Kind: KindTextArea, Required: true},
				{Name: "paragraph", Label: "Paragraphs (JSON)", Kind: KindTextArea},
				{Name: "meta", Label: "Meta (JSON)", Kind: KindTextArea},
				{Name: "faqs", Label: "FAQs (JSON)", Kind: KindTextArea},
				{Name: "img", Label: "Image", Kind: KindFile, Required: true, Accept: webpOnly},
			},
			Columns: []Column{
				{Key: "title", Label: "Title"},
				{Key: "date", Label: "Date", Render: DateOnly("date")},
				{Key: "link", Label: "Link"},
				{Key: "img", Label: "Image", Render: FileLink("img")},
			},
		},
		{
			Name:     "event-news",
			Title:    "Event News",
			Singular: "News item",
			Endpoints: Endpoints{
				Base:        "/news",
				List:        "/event-news",
				Create:      "/event-news",
				Update:      "/update_event_news/{id}",
				Delete:      "/delete/{id}",
				DeleteStyle: DeleteByPath,
			},
			Fields: []Field{
				{Name: "slug", Label: "Slug", Kind: KindText, Required: true},
				{Name: "category", Label: "Category", Kind: KindText, Required: true},
				{Name: "date", Label: "Date", Kind: KindDate, Required: true},
				{Name: "title", Label: "Title", Kind: KindText, Required: true},
				{Name: "description", Label: "Description", Kind: KindTextArea, Required: true},
				{Name: "content", Label: "Content", Kind: KindTextArea},
				{Name: "image", Label: "Image", Kind: KindFile, Required: true, Accept: webpOnly},
			},
			Columns: []Column{
				{Key: "title", Label: "Title"},
				{Key: "category", Label: "Category"},
				{Key: "date", Label: "Date", Render: DateOnly("date")},
				{Key: "image", Label: "Image", Render: FileLink("image")},
			},
		},
		{
			Name:     "event-stories",
			Title:    "Event Stories",
			Singular: "Story",
			Endpoints: Endpoints{
				Base:   "/stories",
				List:   "/get_event_stories",
				Create: "/create_event_story",
				Update: "/update_event_story/{id}",
				Delete: "/delete",
			},
			Fields: []Field{
				{Name: "name", Label: "Name", Kind: KindText, Required: true},
				{Name: "slug", Label: "Slug", Kind: KindText, Required: true},
				{Name: "short_description", Label: "Short description", Kind: KindTextArea, Required: true},
				{Name: "event_start_date", Label: "Start date", Kind: KindDate, Required: true},
				{Name: "event_end_date", Label: "End date", Kind: KindDate},
				{Name: "event_location", Label: "Location", Kind: KindText},
				{Name: "event_type", Label: "Type", Kind: KindText},
				{Name: "content", Label: "Content", Kind: KindTextArea},
				{Name: "front_image", Label: "Front image", Kind: KindFile, Required: true, Accept: webpOnly},
			},
			Columns: []Column{
				{Key: "name", Label: "Name"},
				{Key: "event_start_date", Label: "Start", Render: DateOnly("event_start_date")},
				{Key: "event_location", Label: "Location"},
				{Key: "front_image", Label: "Image", Render: FileLink("front_image")},
			},
		},
		filing("familiar", "Familiarisation Programme", "Familiarisation record", "/familiar",
			Endpoints{List: "/get_familiar", Create: "/add_familiar", Delete: "/delete"},
			"familiar_name", "familiar_date", "file"),
		filing("investor-analyst", "Investor / Analyst Meets", "Analyst meet", "/investor-analyst",
			Endpoints{List: "/get_investor_analyst", Create: "/add_investor_analyst", Delete: "/delete"},
			"investor_analyst_name", "investor_analyst_date", "investor_analyst_file"),
		scoped(filing("investor-info", "Investor Information", "Investor document", "/investor-information",
			Endpoints{List: "/get_investor_information/{option}", Create: "/add_investor_information", Delete: "/delete"},
			"name", "date", "file"), InvestorInformationOptions),
		filing("policies", "Policies", "Policy", "/policy",
			Endpoints{List: "/get_policy", Create: "/add_policy", Delete: "/delete"},
			"policy_name", "policy_date", "file"),
		filing("qip", "QIP", "QIP document", "/qip",
			Endpoints{List: "/get_qip", Create: "/add_qip", Update: "/update/{id}", Delete: "/delete"},
			"qip_name", "qip_date", "file"),
		filing("sebi-dispute", "SEBI Disputes", "SEBI document", "/sebi",
			Endpoints{List: "/get_sebi", Create: "/add_sebi", Delete: "/delete"},
			"sebi_name", "sebi_date", "sebi_file"),
		scoped(filing("stock-exchange", "Stock Exchange", "Filing", "/stock",
			Endpoints{List: "/get/{option}", Create: "/add", Delete: "/delete"},
			"name", "date", "file"), StockOptions),
		scoped(filing("corporate", "Corporate Announcements", "Announcement", "/corporate",
			Endpoints{List: "/get/{option}", Create: "/add", Delete: "/delete"},
			"name", "date", "file"), CorporateOptions),
		filing("tds", "TDS Declarations", "TDS declaration", "/tds",
			Endpoints{List: "/get_tds", Create: "/create_tds", Delete: "/delete"},
			"tds_name", "tds_date", "tds_file"),
		withVariants(scoped(filing("other", "Other Compliances", "Document", "/other",
			Endpoints{List: "/get_other/{option}", Create: "/add_other", Update: "/update_other/{id}", Delete: "/delete"},
			"name", "date", "file"), OtherOptions), map[string]Variant{
			"KMP Contact Details":        contactVariant,
			"Investor Relations Contact": contactVariant,
		}),
		{
			Name:     "jobs",
			Title:    "Jobs",
			Singular: "Job",
			Endpoints: Endpoints{
				Base:        "/jobs",
				List:        "/all",
				Create:      "/add",
				Update:      "/update/{id}",
				Delete:      "/delete/{id}",
				DeleteStyle: DeleteByPath,
			},
			Fields: []Field{
				{Name: "title", Label: "Title", Kind: KindText, Required: true},
				{Name: "description", Label: "Description", Kind: KindTextArea, Required: true},
				{Name: "location", Label: "Location", Kind: KindText, Required: true},
				{Name: "salary", Label: "Salary", Kind: KindText},
				{Name: "img", Label: "Image", Kind: KindFile},
			},
			Columns: []Column{
				{Key: "title", Label: "Title"},
				{Key: "location", Label: "Location"},
				{Key: "salary", Label: "Salary"},
			},
			Details: []Column{
				{Key: "title", Label: "Title"},
				{Key: "description", Label: "Description"},
				{Key: "location", Label: "Location"},
				{Key: "salary", Label: "Salary"},
				{Key: "img", Label: "Image", Render: FileLink("img")},
			},
			Children: &SubList{
				Title: "Applications",
				Path:  "/applications/{id}",
				Columns: []Column{
					{Key: "name", Label: "Name"},
					{Key: "email", Label: "Email"},
					{Key: "resume", Label: "Resume", Render: FileLink("resume")},
					{Key: "createdAt", Label: "Received", Render: DateOnly("createdAt")},
				},
			},
		},
		{
			Name:     "distributors",
			Title:    "Distributors",
			Singular: "Distributor",
			Endpoints: Endpoints{
				Base:        "/distributors",
				List:        "",
				Create:      "/create",
				Update:      "/{id}",
				Delete:      "/{id}",
				DeleteStyle: DeleteByPath,
				Encoding:    EncodeJSON,
			},
			Fields: []Field{
				{Name: "customerName", Label: "Customer name", Kind: KindText, Required: true},
				{Name: "contactNumber", Label: "Contact number", Kind: KindText, Required: true},
				{Name: "district", Label: "District", Kind: KindText, Required: true},
				{Name: "state", Label: "State", Kind: KindText, Required: true},
			},
			Columns: []Column{
				{Key: "customerName", Label: "Customer"},
				{Key: "contactNumber", Label: "Contact"},
				{Key: "district", Label: "District"},
				{Key: "state", Label: "State"},
			},
		},
		{
			Name:     "inquiries",
			Title:    "Inquiries",
			Singular: "Inquiry",
			Endpoints: Endpoints{
				Base:        "/inquiries",
				List:        "",
				Delete:      "/{id}",
				DeleteStyle: DeleteByPath,
			},
			Columns: []Column{
				{Key: "fullName", Label: "Name"},
				{Key: "email", Label: "Email"},
				{Key: "companyName", Label: "Company"},
				{Key: "status", Label: "Status", Render: WithDefault("status", "Pending")},
			},
			Details: []Column{
				{Key: "fullName", Label: "Name"},
				{Key: "email", Label: "Email"},
				{Key: "companyName", Label: "Company"},
				{Key: "classification", Label: "Classification"},
				{Key: "industry", Label: "Industry"},
				{Key: "country", Label: "Country"},
				{Key: "phone", Label: "Phone"},
				{Key: "inquiryMessage", Label: "Inquiry message"},
				{Key: "status", Label: "Status", Render: WithDefault("status", "Pending")},
				{Key: "createdAt", Label: "Received", Render: DateOnly("createdAt")},
			},
			Status: &StatusAction{
				Field:   "status",
				Label:   "Status",
				Path:    "/{id}/status",
				Values:  InquiryStatuses,
				Default: "Pending",
			},
		},
	}
}

var catalogIndex = func() map[string]*Schema {
	idx := make(map[string]*Schema)
	for _, s := range Catalog() {
		if err := s.Validate(); err != nil {
			panic(err)
		}
		idx[s.Name] = s
	}
	return idx
}()

var catalogOrder = Catalog()

// Lookup returns the catalog schema named name.
func Lookup(name string) (*Schema, bool) {
	s, ok := catalogIndex[name]
	return s, ok
}

// All returns the catalog schemas in menu order. Callers must not mutate them.
func All() []*Schema {
	out := make([]*Schema, 0, len(catalogOrder))
	for _, s := range catalogOrder {
		out = append(out, catalogIndex[s.Name])
	}
	return out
}
