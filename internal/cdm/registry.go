package cdm

// Template is one canonical entity of the Common Data Model registry.
type Template struct {
	// LogicalName is the canonical logical name in the target store.
	LogicalName string

	// DisplayName is the canonical display name.
	DisplayName string

	// Synonyms are alternative names diagram authors commonly use.
	Synonyms []string

	// Attributes are the canonical attribute logical names, used for
	// attribute-overlap scoring and field mapping.
	Attributes []string
}

// Registry returns the canonical entity templates in declaration order.
// Declaration order is part of the matcher contract: ties between equally
// scored templates resolve to the earlier one.
//
// The returned slice is shared; callers must not modify it.
func Registry() []Template {
	return registry
}

var registry = []Template{
	{
		LogicalName: "account",
		DisplayName: "Account",
		Synonyms:    []string{"company", "organization", "organisation", "business", "customer", "client", "vendor", "supplier"},
		Attributes: []string{
			"name", "accountnumber", "telephone1", "emailaddress1",
			"websiteurl", "address1_city", "address1_country",
			"industrycode", "revenue", "numberofemployees",
		},
	},
	{
		LogicalName: "contact",
		DisplayName: "Contact",
		Synonyms:    []string{"person", "people", "individual"},
		Attributes: []string{
			"fullname", "firstname", "lastname", "emailaddress1",
			"telephone1", "mobilephone", "jobtitle", "birthdate",
			"address1_city",
		},
	},
	{
		LogicalName: "lead",
		DisplayName: "Lead",
		Synonyms:    []string{"prospect", "inquiry", "enquiry"},
		Attributes: []string{
			"subject", "firstname", "lastname", "companyname",
			"emailaddress1", "telephone1", "leadsourcecode",
		},
	},
	{
		LogicalName: "opportunity",
		DisplayName: "Opportunity",
		Synonyms:    []string{"deal", "sale"},
		Attributes: []string{
			"name", "estimatedvalue", "estimatedclosedate",
			"closeprobability", "actualvalue", "stepname",
		},
	},
	{
		LogicalName: "incident",
		DisplayName: "Case",
		Synonyms:    []string{"case", "ticket", "issue", "supportcase", "servicerequest"},
		Attributes: []string{
			"title", "ticketnumber", "description", "prioritycode",
			"statuscode", "caseorigincode",
		},
	},
	{
		LogicalName: "product",
		DisplayName: "Product",
		Synonyms:    []string{"item", "sku", "article", "merchandise"},
		Attributes: []string{
			"name", "productnumber", "price", "standardcost",
			"quantityonhand", "description",
		},
	},
	{
		LogicalName: "campaign",
		DisplayName: "Campaign",
		Synonyms:    []string{"marketingcampaign", "promotion"},
		Attributes: []string{
			"name", "codename", "budgetedcost", "actualcost",
			"expectedrevenue",
		},
	},
	{
		LogicalName: "task",
		DisplayName: "Task",
		Synonyms:    []string{"todo", "activity", "action"},
		Attributes: []string{
			"subject", "description", "scheduledstart", "scheduledend",
			"actualdurationminutes",
		},
	},
	{
		LogicalName: "email",
		DisplayName: "Email",
		Synonyms:    []string{"message", "mail"},
		Attributes: []string{
			"subject", "description", "sender", "torecipients",
		},
	},
	{
		LogicalName: "systemuser",
		DisplayName: "User",
		Synonyms:    []string{"user", "employee", "staff", "agent", "owner"},
		Attributes: []string{
			"fullname", "firstname", "lastname", "internalemailaddress",
			"title",
		},
	},
}
