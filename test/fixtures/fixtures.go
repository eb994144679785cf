package fixtures

import "github.com/nimasrn/wa-messenger/internal/model"

var (
	Alice = model.ContactCreateRequest{
		Name:         "Alice Smith",
		Phone:        "+15550001111",
		Email:        "alice@example.com",
		Company:      "Acme",
		Tags:         []string{"vip"},
		CustomFields: map[string]string{"plan": "gold"},
	}

	Bob = model.ContactCreateRequest{
		Name:  "Bob",
		Phone: "+15550002222",
		Tags:  []string{"trial"},
	}

	Greeting = model.TemplateCreateRequest{
		Name:     "Greeting",
		Content:  "Hi {{firstName}} from {{company}}, your plan is {{plan}}",
		Category: "marketing",
	}
)

// ContactsCSV is an upload with one usable row per contact and a row
// without a phone number.
const ContactsCSV = "name,phone,company\n" +
	"Carol,+15550003333,Globex\n" +
	"Dan,+15550004444,\n" +
	"NoPhone,,Initech\n"

func NewGroup(name string, contactIDs ...string) model.GroupCreateRequest {
	return model.GroupCreateRequest{
		Name:       name,
		ContactIDs: contactIDs,
	}
}
