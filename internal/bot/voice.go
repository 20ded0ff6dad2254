// README: Voice/NLU intake: transcribe, match against catalog, merge into cart.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"kirana/internal/ai"
	"kirana/internal/modules/catalog"
	"kirana/internal/modules/session"
	"kirana/internal/notify"
	"kirana/internal/types"
)

// handleVoiceNote downloads the voice note and runs it through the
// NLU adapter. Any adapter or media failure degrades to a text retry
// prompt; it never touches the session.
func (e *Engine) handleVoiceNote(ctx context.Context, sess *session.Session, audioID string) error {
	if e.deps.Parser == nil || e.deps.Media == nil {
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgVoiceRetry})
		return nil
	}
	url, mimeType, err := e.deps.Media.MediaURL(ctx, audioID)
	if err != nil {
		log.Printf("bot: media lookup failed: %v", err)
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgVoiceRetry})
		return nil
	}
	audio, err := e.deps.Media.Download(ctx, url)
	if err != nil {
		log.Printf("bot: media download failed: %v", err)
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgVoiceRetry})
		return nil
	}
	items, err := e.deps.Parser.TranscribeOrder(ctx, audio, mimeType)
	if err != nil {
		log.Printf("bot: voice transcription failed: %v", err)
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgVoiceRetry})
		return nil
	}
	return e.mergeParsedItems(ctx, sess, items)
}

// voiceIntake handles typed free text in the voice_order state.
func (e *Engine) voiceIntake(ctx context.Context, sess *session.Session, text string) error {
	if e.deps.Parser == nil {
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgVoiceRetry})
		return nil
	}
	items, err := e.deps.Parser.ParseOrder(ctx, text)
	if err != nil {
		log.Printf("bot: order parse failed: %v", err)
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgVoiceRetry})
		return nil
	}
	return e.mergeParsedItems(ctx, sess, items)
}

// mergeParsedItems resolves NLU output against the active catalog and
// merges matches into the cart. Resolution is the catalog's fuzzy name
// lookup: substring containment in either direction, first match in
// menu order wins. Matched quantities overwrite any existing cart
// entry, so repeating a voice command does not double the amount.
// Nothing understood keeps the customer in voice intake.
func (e *Engine) mergeParsedItems(ctx context.Context, sess *session.Session, items []ai.ParsedItem) error {
	if len(items) == 0 {
		sess.State = session.StateVoiceOrder
		if err := e.deps.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgVoiceRetry})
		return nil
	}

	products, err := e.deps.Catalog.ListActive(ctx)
	if err != nil {
		return err
	}

	var unresolved []ai.ParsedItem
	matched := 0
	for _, it := range items {
		p, err := e.deps.Catalog.GetByName(ctx, it.Name, true)
		if errors.Is(err, catalog.ErrNotFound) {
			unresolved = append(unresolved, it)
			continue
		}
		if err != nil {
			return err
		}
		qty := types.QuantityOne
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		sess.Cart[p.ID] = qty
		matched++
	}

	if matched == 0 {
		// Nothing matched: report and retry, cart untouched.
		sess.State = session.StateVoiceOrder
		if err := e.deps.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, notify.Text{To: sess.Phone, Body: unresolvedReport(unresolved, products) + "\n\n" + msgVoiceRetry})
		return nil
	}

	sess.State = session.StateVoiceConfirm
	sess.Scratch = session.Scratch{}
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}

	summary, _, err := e.deps.Pricer.Summary(ctx, sess.Cart)
	if err != nil {
		return err
	}
	body := summary
	if len(unresolved) > 0 {
		body = unresolvedReport(unresolved, products) + "\n\n" + body
	}
	e.send(ctx, voiceCartMessage(sess.Phone, body+"\n\nक्या यह सही है?"))
	return nil
}

// unresolvedReport lists items the catalog could not supply, with up
// to two fuzzy suggestions keyed on the first word of the fragment.
func unresolvedReport(items []ai.ParsedItem, products []catalog.Product) string {
	var b strings.Builder
	b.WriteString("ये आइटम नहीं मिले:")
	for _, it := range items {
		fmt.Fprintf(&b, "\n• %s", it.Fragment)
		if sug := suggest(products, it.Fragment); len(sug) > 0 {
			fmt.Fprintf(&b, " (शायद: %s)", strings.Join(sug, ", "))
		}
	}
	return b.String()
}

func suggest(products []catalog.Product, fragment string) []string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(fragment)))
	if len(words) == 0 {
		return nil
	}
	first := words[0]
	var out []string
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), first) {
			out = append(out, p.Name)
			if len(out) == 2 {
				break
			}
		}
	}
	return out
}
