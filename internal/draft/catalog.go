package draft

// Catalog is the full set of card names a pool can be sampled from.
var Catalog = []string{
	"Ashen Revenant",
	"Bazaar Trickster",
	"Blight Harvester",
	"Bog Lantern",
	"Boulderback Tortoise",
	"Briar Sentinel",
	"Cinder Adept",
	"Cloudpiercer Roc",
	"Coral Warden",
	"Crypt Chandler",
	"Dawnfield Healer",
	"Deepmine Foreman",
	"Dune Stalker",
	"Duskwing Owl",
	"Ember Colossus",
	"Fenwater Naiad",
	"Flickerwisp",
	"Frostbound Jarl",
	"Gallows Crow",
	"Gilded Procurer",
	"Glacier Shaman",
	"Gravemoss Shambler",
	"Grove Tender",
	"Harbor Smuggler",
	"Hexweave Spider",
	"Hollowbark Elder",
	"Ironclad Bailiff",
	"Ivory Seeress",
	"Kelp Strangler",
	"Lamplight Scribe",
	"Lodestone Golem",
	"Marrow Alchemist",
	"Mirage Duelist",
	"Mirefang Basilisk",
	"Moonlit Poacher",
	"Mosslight Drifter",
	"Nettle Witch",
	"Obsidian Pikeman",
	"Opal Cartographer",
	"Pale Lighthouse Keeper",
	"Quarry Ogre",
	"Quicksilver Fencer",
	"Raventide Corsair",
	"Riftgate Sapper",
	"Rimeclaw Bear",
	"Rust Prophet",
	"Saltmarsh Oracle",
	"Shardwing Wyvern",
	"Silverthorn Archer",
	"Sootveil Assassin",
	"Sporeback Boar",
	"Starfall Herald",
	"Stonebrook Miller",
	"Stormcall Drummer",
	"Sunken Bellringer",
	"Tallow Gargoyle",
	"Thistledown Sprite",
	"Tidepool Mystic",
	"Timberline Wolf",
	"Umbral Courtier",
	"Verdant Lancer",
	"Vault Spider",
	"Wickfield Scarecrow",
	"Windmill Guardian",
	"Winterhollow Fox",
	"Zephyr Skiff",
}
