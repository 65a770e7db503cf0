package contracts

import "embed"

//go:generate solc token.sol --abi --base-path . --include-path node_modules --overwrite -o ./compiled
//go:embed compiled/*.abi
var Fs embed.FS
