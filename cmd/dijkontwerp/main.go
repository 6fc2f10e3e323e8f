/*
Copyright © 2026 the Verkenning authors.
This file is part of Verkenning.

Verkenning is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Verkenning is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Verkenning.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command dijkontwerp is a command-line interface for designing dike
// reinforcements.
package main

import (
	"fmt"
	"os"

	"github.com/Deltares-research/Verkenning-2.0-sub001/dijkutil"
)

func main() {
	if err := dijkutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
