// README: Hindi message texts and notification builders.
package bot

import (
	"fmt"
	"strconv"
	"strings"

	"kirana/internal/modules/catalog"
	"kirana/internal/modules/ledger"
	"kirana/internal/notify"
)

// Button and list reply ids double as command tokens in the
// transition table; keep them in one place.
const (
	cmdMenu         = "menu"
	cmdStatus       = "status"
	cmdVoice        = "voice"
	cmdAddMore      = "add_more"
	cmdViewCart     = "view_cart"
	cmdConfirmOrder = "confirm_order"
	cmdBackToMenu   = "back_to_menu"
	cmdVoiceYes     = "yes_confirm"
	cmdVoiceNo      = "no_edit"
	cmdOwnerAccept  = "ok"
	cmdRiderReady   = "ready"
	cmdRiderDone    = "delivered"
)

var statusLabels = map[ledger.Status]string{
	ledger.StatusPlaced:         "प्लेस किया गया",
	ledger.StatusAccepted:       "एक्सेप्ट",
	ledger.StatusRiderAssigned:  "राइडर असाइन",
	ledger.StatusOutForDelivery: "डिलीवरी पर",
	ledger.StatusDelivered:      "डिलीवर",
}

func statusLabel(s ledger.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func welcomeMessage(to string) notify.Notification {
	return notify.Buttons{
		To:   to,
		Body: "नमस्ते 👋 हमारी ग्रॉसरी दुकान में आपका स्वागत है।\n\nक्या करना चाहेंगे?",
		Choices: []notify.Choice{
			{ID: cmdMenu, Label: "🛒 ग्रॉसरी मेनू"},
			{ID: cmdStatus, Label: "📦 ऑर्डर स्टेटस"},
			{ID: cmdVoice, Label: "🎤 बोलकर ऑर्डर"},
		},
	}
}

func menuMessage(to string, sections []catalog.Section) notify.Notification {
	if len(sections) == 0 {
		return notify.Text{To: to, Body: "मेनू में अभी कोई आइटम उपलब्ध नहीं है 🙏"}
	}
	out := notify.List{
		To:     to,
		Header: "हमारा ग्रॉसरी मेनू 🛒",
		Body:   "नीचे से आइटम चुनें।",
		Button: "मेनू देखें",
	}
	for _, sec := range sections {
		rows := make([]notify.Row, 0, len(sec.Products))
		for _, p := range sec.Products {
			desc := p.Price.String()
			if strings.Contains(strings.ToLower(p.Name), "kg") {
				desc += "/kg"
			}
			rows = append(rows, notify.Row{
				ID:          strconv.FormatInt(p.ID, 10),
				Title:       p.Name,
				Description: desc,
			})
		}
		out.Sections = append(out.Sections, notify.ListSection{Title: sec.Category, Rows: rows})
	}
	return out
}

func productDetailMessage(to string, p catalog.Product) notify.Notification {
	caption := fmt.Sprintf("%s\n%s per kg\n\nकितनी क्वांटिटी चाहिए?\nउदाहरण: 2kg या 1", p.Name, p.Price)
	if p.ImageURL != "" {
		return notify.Media{To: to, URL: p.ImageURL, Caption: caption}
	}
	return notify.Text{To: to, Body: caption}
}

func addedToCartMessage(to, productName, qty string) notify.Notification {
	return notify.Buttons{
		To:   to,
		Body: fmt.Sprintf("%s - %skg कार्ट में जोड़ा गया!", productName, qty),
		Choices: []notify.Choice{
			{ID: cmdAddMore, Label: "और जोड़ें"},
			{ID: cmdViewCart, Label: "कार्ट देखें"},
		},
	}
}

func cartMessage(to, summary string) notify.Notification {
	return notify.Buttons{
		To:   to,
		Body: summary,
		Choices: []notify.Choice{
			{ID: cmdConfirmOrder, Label: "ऑर्डर कन्फर्म करें"},
			{ID: cmdBackToMenu, Label: "मेनू में वापस"},
		},
	}
}

func voiceCartMessage(to, body string) notify.Notification {
	return notify.Buttons{
		To:   to,
		Body: body,
		Choices: []notify.Choice{
			{ID: cmdVoiceYes, Label: "✅ हाँ, सही है"},
			{ID: cmdVoiceNo, Label: "✏️ बदलना है"},
		},
	}
}

func orderPlacedMessage(to string, o *ledger.Order) notify.Notification {
	return notify.Text{
		To: to,
		Body: fmt.Sprintf("🎉 ऑर्डर #%d सफलतापूर्वक प्लेस हो गया!\nकुल: %s\n\nस्टेटस अपडेट मिलते रहेंगे।",
			o.ID, o.GrandTotal),
	}
}

func ownerNewOrderMessage(ownerPhone, customerName, customerPhone, address, mapLine string, o *ledger.Order, items []ledger.Item) notify.Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "नया ऑर्डर! #%d\n", o.ID)
	fmt.Fprintf(&b, "नाम: %s\n", customerName)
	fmt.Fprintf(&b, "मोबाइल: %s\n", customerPhone)
	fmt.Fprintf(&b, "एड्रेस: %s\n", address)
	fmt.Fprintf(&b, "मैप: %s\n\n", mapLine)
	b.WriteString("आइटम्स:\n")
	for _, it := range items {
		fmt.Fprintf(&b, "- %s %skg @ %s = %s\n", it.Name, it.Quantity, it.UnitPrice, it.UnitPrice.MulQty(it.Quantity))
	}
	fmt.Fprintf(&b, "\nटोटल: %s | डिलीवरी: %s | ग्रैंड: %s\n\n", o.ItemTotal, o.DeliveryFee, o.GrandTotal)
	b.WriteString("एक्सेप्ट करने के लिए 'OK' रिप्लाई करें।")
	return notify.Text{To: ownerPhone, Body: b.String()}
}

func riderAssignmentMessage(riderPhone, customerName, customerPhone, address, mapLine string, o *ledger.Order, items []ledger.Item) notify.Notification {
	var b strings.Builder
	b.WriteString("नई डिलीवरी!\n")
	b.WriteString("पिकअप: दुकान\n")
	fmt.Fprintf(&b, "कस्टमर: %s - %s\n", customerName, customerPhone)
	fmt.Fprintf(&b, "एड्रेस: %s\n", address)
	fmt.Fprintf(&b, "मैप: %s\n\n", mapLine)
	if len(items) > 0 {
		b.WriteString("आइटम्स:\n")
		for _, it := range items {
			fmt.Fprintf(&b, "- %s %skg\n", it.Name, it.Quantity)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "COD अमाउंट: %s\n\n", o.GrandTotal)
	b.WriteString("पिकअप कन्फर्म करें: 'READY' टाइप करें\n")
	b.WriteString("डिलीवर करने पर: 'DELIVERED' टाइप करें")
	return notify.Text{To: riderPhone, Body: b.String()}
}

const (
	msgBadSelection    = "गलत चुनाव। कृपया मेनू से दोबारा चुनें।"
	msgBadQuantity     = "गलत क्वांटिटी। उदाहरण: 2kg या 1.5"
	msgEmptyCart       = "कार्ट खाली है। मेनू से आइटम चुनें।"
	msgEmptyCartShort  = "कार्ट खाली है!"
	msgSomethingWrong  = "कुछ गड़बड़ हुई। कृपया दोबारा मेनू से शुरू करें।"
	msgAskAddress      = "अब अपना पूरा एड्रेस बताएं:"
	msgVoicePrompt     = "🎤 बोलकर या लिखकर बताएं क्या चाहिए।\nउदाहरण: 2 किलो आलू, 1 किलो चीनी"
	msgVoiceRetry      = "माफ़ कीजिए, समझ नहीं आया। कृपया दोबारा लिखकर बताएं।\nउदाहरण: 2 किलो आलू"
	msgLocationThanks  = "लोकेशन मिल गई! धन्यवाद।"
	msgNoOrdersYet     = "आपका कोई ऑर्डर नहीं मिला।"
	msgNoPendingOrders = "कोई पेंडिंग ऑर्डर नहीं है।"
	msgOperatorError   = "यह ऑर्डर इस स्टेप पर नहीं है।"
)
