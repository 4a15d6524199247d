package main

import "github.com/priyanshu2307/Newschat/cmd"

func main() {
	cmd.Execute()
}
