package main

import "github.com/tayloree/shopcli/cmd"

func main() {
	cmd.Execute()
}
