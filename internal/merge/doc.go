// Package merge flattens independently-namespaced source modules into one file.
//
// Each module contributes the body of its single top-level wrapping block
// (normally a C# namespace). The primary module's body is written first with
// its terminal closing brace removed, so the type it declares stays open and
// every other module's members end up nested inside it:
//
//	// header
//	namespace Oxide.Plugins
//	{
//	    public class Tebex : CovalencePlugin
//	    {
//	        ...primary members...
//	    <other module bodies, allow-list order>
//		}
//	}
//
// Extraction counts brace characters per line and does not tokenise, so
// braces inside string or comment literals are counted too.
package merge
