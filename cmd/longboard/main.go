/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

import "github.com/FelipeSilva10/longboard-IDE/cmd"

func main() {
	cmd.Execute()
}
