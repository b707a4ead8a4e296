package transform

import (
	"fmt"

	"zipcaster/internal/codec"
	"zipcaster/internal/domain"
	"zipcaster/internal/splatnet"
)

const badgeSlots = 3

// playerBuilder converts one team's players. Unknown ability images are
// collected as warnings.
type playerBuilder struct {
	abilities *codec.AbilityResolver
	warnings  []error
}

func (b *playerBuilder) player(field string, position int, p splatnet.Player) (domain.Player, error) {
	npln, err := codec.PlayerNPLN(p.ID)
	if err != nil {
		return domain.Player{}, withField(field+".id", err)
	}
	weaponID, err := codec.DecodeIntID(field+".weapon.id", p.Weapon.ID, codec.PrefixWeapon)
	if err != nil {
		return domain.Player{}, err
	}
	species, err := lookup(speciesTable, field+".species", p.Species)
	if err != nil {
		return domain.Player{}, err
	}
	nameplate, err := buildNameplate(field+".nameplate", p.Nameplate)
	if err != nil {
		return domain.Player{}, err
	}

	out := domain.Player{
		Name:          p.Name,
		NplnID:        npln,
		Me:            p.IsMyself,
		Discriminator: p.NameID,
		Splashtag:     p.Byname,
		Species:       species,
		Weapon: domain.Weapon{
			Name:        p.Weapon.Name,
			ID:          weaponID,
			SubName:     p.Weapon.SubWeapon.Name,
			SpecialName: p.Weapon.SpecialWeapon.Name,
		},
		Nameplate:          nameplate,
		Inked:              p.Paint,
		ScoreboardPosition: position,
		Gear: domain.Gear{
			Headgear: b.gear(p.HeadGear),
			Clothing: b.gear(p.ClothingGear),
			Shoes:    b.gear(p.ShoesGear),
		},
		Disconnected: p.Result == nil,
	}

	if r := p.Result; r != nil {
		out.Result = &domain.PlayerResult{
			KillsOrAssists: r.Kill,
			Kills:          r.Kill - r.Assist,
			Assists:        r.Assist,
			Deaths:         r.Death,
			Specials:       r.Special,
			Signals:        r.NoroshiTry,
		}
		out.Crown = p.Crown
	}

	if p.FestDragonCert != nil {
		crown, err := lookup(crownTable, field+".festDragonCert", *p.FestDragonCert)
		if err != nil {
			return domain.Player{}, err
		}
		if crown != "" {
			out.CrownType = &crown
			out.Crown = true
		}
	}
	return out, nil
}

func (b *playerBuilder) ability(url string) domain.Ability {
	a, err := b.abilities.Resolve(url)
	if err != nil {
		b.warnings = append(b.warnings, err)
	}
	return a
}

// gear resolves a gear piece. Additional abilities are padded with empty
// slots or truncated to exactly three.
func (b *playerBuilder) gear(g splatnet.Gear) domain.GearItem {
	item := domain.GearItem{
		Name:           g.Name,
		Brand:          g.Brand.Name,
		PrimaryAbility: b.ability(g.PrimaryGearPower.Image.URL),
	}
	for i, gp := range g.AdditionalGearPowers {
		if i == domain.AdditionalAbilitySlots {
			break
		}
		item.AdditionalAbilities[i] = b.ability(gp.Image.URL)
	}
	return item
}

func buildNameplate(field string, n splatnet.Nameplate) (domain.Nameplate, error) {
	var out domain.Nameplate
	for i, badge := range n.Badges {
		if i == badgeSlots {
			break
		}
		if badge == nil {
			continue
		}
		id, err := codec.DecodeField(fmt.Sprintf("%s.badges[%d].id", field, i), badge.ID, codec.PrefixBadge)
		if err != nil {
			return domain.Nameplate{}, err
		}
		out.Badges[i] = &id
	}

	bg, err := codec.DecodeField(field+".background.id", n.Background.ID, codec.PrefixBackground)
	if err != nil {
		return domain.Nameplate{}, err
	}
	out.BackgroundID = bg
	out.TextColor = codec.ColorToHex(n.Background.TextColor)
	return out, nil
}

// withField points a DecodeError at its location in the detail payload.
func withField(field string, err error) error {
	if de, ok := err.(*codec.DecodeError); ok {
		return &codec.DecodeError{Field: field, Value: de.Value, Reason: de.Reason}
	}
	return err
}
